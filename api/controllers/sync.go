package controllers

import (
	"net/http"

	"github.com/martinortega/abarrote-pos/api/responses"
	"github.com/martinortega/abarrote-pos/internal/syncd"
	"github.com/martinortega/abarrote-pos/internal/syncqueue"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// SyncController reports and pokes the offline durability queue.
type SyncController struct {
	queue  *syncqueue.Store
	daemon *syncd.Daemon
	logg   *logger.Logger
}

func NewSyncController(queue *syncqueue.Store, daemon *syncd.Daemon, logg *logger.Logger) *SyncController {
	return &SyncController{queue: queue, daemon: daemon, logg: logg}
}

func (c *SyncController) Status(w http.ResponseWriter, r *http.Request) {
	depth, err := c.queue.Depth(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"pending": depth})
}

// Drain forces a sync pass, for the "retry now" button on the till.
func (c *SyncController) Drain(w http.ResponseWriter, r *http.Request) {
	report := c.daemon.Drain(r.Context())
	responses.WriteSuccess(w, map[string]any{
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
}
