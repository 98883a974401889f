package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithSaleID(context.Background(), "sale-123")
	ctx = logg.WithCashierID(ctx, "cashier-9")
	logg.Info(ctx, "sale settled")

	out := buf.String()
	for _, want := range []string{`"sale_id":"sale-123"`, `"cashier_id":"cashier-9"`, `"service":"test"`, "sale settled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %s, got %s", want, out)
		}
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %v", got)
	}
	if got := ParseLevel("warn"); got != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", got)
	}
}
