package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/riskibarqy/football-live/internal/usecase"
)

type Handler struct {
	syncService    *usecase.SyncService
	resolveService *usecase.ResolveService
	sourceService  *usecase.SourceService
	matchService   *usecase.MatchService
	logger         *logging.Logger
	validator      *validator.Validate
	encodeID       func(match.Summary) (string, error)
}

func NewHandler(
	syncService *usecase.SyncService,
	resolveService *usecase.ResolveService,
	sourceService *usecase.SourceService,
	matchService *usecase.MatchService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:    syncService,
		resolveService: resolveService,
		sourceService:  sourceService,
		matchService:   matchService,
		logger:         logger,
		validator:      validator.New(),
		encodeID:       match.EncodeID,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// summaryDTO leaves the id out when the summary cannot be encoded.
func (h *Handler) summaryDTO(ctx context.Context, s match.Summary) summaryDTO {
	encoded, err := h.encodeID(s)
	if err != nil {
		h.logger.WarnContext(ctx, "encode match id failed", "source", string(s.Source), "url", s.URL, "error", err)
		encoded = ""
	}
	return toSummaryDTO(s, encoded)
}

func (h *Handler) summaryDTOs(ctx context.Context, items []match.Summary) []summaryDTO {
	out := make([]summaryDTO, 0, len(items))
	for _, s := range items {
		out = append(out, h.summaryDTO(ctx, s))
	}
	return out
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a request body into dst. An empty body is accepted when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if allowEmpty && (r.Body == nil || r.ContentLength == 0) {
		return nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
