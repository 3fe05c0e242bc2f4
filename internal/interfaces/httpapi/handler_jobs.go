package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/football-live/internal/usecase"
)

// RunSyncJob always answers 200; the sync outcome is in the body.
func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.ScheduledFor != nil {
		h.logger.DebugContext(ctx, "sync dispatch received",
			"dispatch_id", req.DispatchID,
			"lag", time.Since(*req.ScheduledFor).Round(time.Second).String(),
		)
	}

	result := h.syncService.RunSyncJob(ctx)
	if result.Error != "" {
		h.logger.WarnContext(ctx, "sync job finished with error", "dispatch_id", req.DispatchID, "error", result.Error)
	}

	writeSuccess(ctx, w, http.StatusOK, syncResponse{SyncedCount: result.SyncedCount, Error: result.Error})
}

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBootstrapJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	if err := h.syncService.Bootstrap(ctx); err != nil {
		h.logger.WarnContext(ctx, "bootstrap sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"queued": usecase.SyncJobPath})
}
