package httpapi

import (
	"context"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

// Handler exposes one browser session over HTTP. It drives the same
// orchestrator the terminal view uses, so selections persist the same way.
type Handler struct {
	orchestrator *usecase.FilterOrchestrator
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(orchestrator *usecase.FilterOrchestrator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		orchestrator: orchestrator,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetState")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

// Reload refetches every universe and then the matches.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Reload")
	defer span.End()

	if err := h.orchestrator.Init(ctx); err != nil {
		h.logger.WarnContext(ctx, "reload failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetDate")
	defer span.End()

	var req setDateRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if (req.Date == nil) == (req.Shift == nil) {
		writeError(ctx, w, crerr.Mark(crerr.New("exactly one of date or shift is required"), usecase.ErrInvalidInput))
		return
	}

	var err error
	if req.Shift != nil {
		err = h.orchestrator.ShiftDate(ctx, *req.Shift)
		if err == nil {
			h.orchestrator.Prefetch(context.WithoutCancel(ctx), *req.Shift)
		}
	} else {
		err = h.orchestrator.SetDate(ctx, *req.Date)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "set date failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

// ListFilterOptions returns the visible options of one dimension, narrowed by
// the optional search query parameter.
func (h *Handler) ListFilterOptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFilterOptions", dimensionAttr(r))
	defer span.End()

	set, err := h.set(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, filterToDTO(set, r.URL.Query().Get("search")))
}

func (h *Handler) ToggleFilter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleFilter", dimensionAttr(r))
	defer span.End()

	set, err := h.set(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req toggleFilterRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.orchestrator.Toggle(ctx, set.Dimension(), req.ID); err != nil {
		h.logger.WarnContext(ctx, "toggle filter failed", "dimension", set.Dimension(), "id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

// CommitSearch selects the only option matching search. It never deselects.
func (h *Handler) CommitSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CommitSearch", dimensionAttr(r))
	defer span.End()

	set, err := h.set(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req commitSearchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, ok := set.SoleVisible(req.Search)
	if !ok {
		writeError(ctx, w, crerr.Mark(crerr.Newf("search %q does not match exactly one option", req.Search), usecase.ErrNotFound))
		return
	}
	if err := h.orchestrator.SelectIfAbsent(ctx, set.Dimension(), item.ID); err != nil {
		h.logger.WarnContext(ctx, "commit search failed", "dimension", set.Dimension(), "id", item.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearFilter", dimensionAttr(r))
	defer span.End()

	set, err := h.set(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.orchestrator.Clear(ctx, set.Dimension()); err != nil {
		h.logger.WarnContext(ctx, "clear filter failed", "dimension", set.Dimension(), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(h.orchestrator.Snapshot()))
}

func (h *Handler) set(r *http.Request) (*selection.Set, error) {
	raw := strings.TrimSpace(r.PathValue("dimension"))
	dim, ok := catalog.ParseDimension(raw)
	if !ok {
		return nil, crerr.Mark(crerr.Newf("unknown dimension %q", raw), usecase.ErrInvalidInput)
	}
	return h.orchestrator.Set(dim), nil
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return crerr.Mark(crerr.Wrap(err, "invalid JSON payload"), usecase.ErrInvalidInput)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return crerr.Mark(crerr.Wrap(err, "validation failed"), usecase.ErrInvalidInput)
	}

	return nil
}
