package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSources")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.sourceService.Diagnose(ctx))
}

func (h *Handler) ListSourceMatches(w http.ResponseWriter, r *http.Request) {
	sourceID := strings.TrimSpace(r.PathValue("sourceID"))
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSourceMatches", attrSourceID.String(sourceID))
	defer span.End()

	items, err := h.sourceService.List(ctx, sourceID)
	if err != nil {
		h.logger.WarnContext(ctx, "list source matches failed", "source", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.summaryDTOs(ctx, items))
}
