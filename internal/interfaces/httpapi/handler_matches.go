package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	records, err := h.matchService.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTOs(records))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("matchID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch", attrMatchID.String(matchID))
	defer span.End()

	record, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(record))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req matchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.matchService.Create(ctx, toMatchInput(req))
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toMatchDTO(record))
}

func (h *Handler) CreateMatchFromLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatchFromLink")
	defer span.End()

	var req createFromLinkRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.CreateFromLinkInput{
		DetailURL: req.DetailURL,
		Status:    match.Status(req.Status),
	}
	if req.MatchTime != nil {
		input.MatchTime = req.MatchTime.UTC()
	}

	record, err := h.matchService.CreateFromLink(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "create match from link failed", "url", req.DetailURL, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toMatchDTO(record))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	var req matchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	record, err := h.matchService.Update(ctx, matchID, toMatchInput(req))
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(record))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("matchID")
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch", attrMatchID.String(matchID))
	defer span.End()

	if err := h.matchService.Delete(ctx, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) CheckEmbeds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckEmbeds")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	report, err := h.matchService.CheckEmbeds(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

// DecodeMatchID turns an encoded listing id back into its summary.
func (h *Handler) DecodeMatchID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DecodeMatchID")
	defer span.End()

	summary, ok := match.DecodeID(r.PathValue("token"))
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown match token", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.summaryDTO(ctx, summary))
}

func toMatchInput(req matchRequest) usecase.MatchInput {
	input := usecase.MatchInput{
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		HomeLogo:  req.HomeLogo,
		AwayLogo:  req.AwayLogo,
		Status:    match.Status(req.Status),
		StreamURL: req.StreamURL,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	}
	if req.MatchTime != nil {
		input.MatchTime = req.MatchTime.UTC()
	}
	return input
}
