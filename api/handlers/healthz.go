package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/martinortega/abarrote-pos/api/responses"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// Pinger is any dependency that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports process liveness plus the reachability of each dependency.
// The till keeps working offline, so an unreachable remote store degrades the
// report without failing the probe.
func Healthz(logg *logger.Logger, remote, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		if remote != nil {
			status["remote_db"] = pingResult(ctx, remote)
		}
		if cache != nil {
			status["redis"] = pingResult(ctx, cache)
		}
		responses.WriteSuccess(w, status)
	}
}

func pingResult(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}
