package httpapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// ResolveEmbed always answers 200 with {ok, embedUrl | message}.
func (h *Handler) ResolveEmbed(w http.ResponseWriter, r *http.Request) {
	detailURL := r.URL.Query().Get("url")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveEmbed", attrDetailURL.String(detailURL))
	defer span.End()

	result := h.resolveService.Resolve(ctx, detailURL)
	span.SetAttributes(attribute.Bool("football_live.resolved", result.OK))
	writeSuccess(ctx, w, http.StatusOK, result)
}
