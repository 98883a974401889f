package errors

import stdErrors "errors"

// Dumped carries a flattened view of an error chain for log fields.
type Dumped struct {
	TopMessage string
	Code       Code
	Chain      []string
}

// Dump walks the error chain and collects the pieces worth logging.
func Dump(err error) Dumped {
	out := Dumped{Code: CodeInternal}
	if err == nil {
		return out
	}
	out.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		out.Code = typed.Code()
	}
	for cur := err; cur != nil; cur = stdErrors.Unwrap(cur) {
		out.Chain = append(out.Chain, cur.Error())
	}
	return out
}
