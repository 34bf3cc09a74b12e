package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/render"
)

// PortfolioService is implemented by *service.PortfolioService.
type PortfolioService interface {
	Create(ctx context.Context, ownerID string, in model.Portfolio) (*model.Portfolio, error)
	Get(ctx context.Context, idOrSlug string) (*model.Portfolio, error)
	GetOwned(ctx context.Context, userID, idOrSlug string) (*model.Portfolio, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]model.Portfolio, error)
	Update(ctx context.Context, userID, id string, delta model.PortfolioDelta) (*model.Portfolio, error)
	RecordClick(ctx context.Context, portfolioID, linkID string) (int64, error)
}

type PortfolioHandler struct {
	svc    PortfolioService
	logger *slog.Logger
}

func NewPortfolioHandler(svc PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, logger: logger}
}

// HandleList serves GET /api/portfolios?limit=&offset=.
func (h *PortfolioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate serves POST /api/portfolios. The body is the initial portfolio; ID, slug
// and owner are assigned by the server.
func (h *PortfolioHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in model.Portfolio
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/portfolios/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet serves GET /api/portfolios/{idOrSlug} for the owner.
func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.svc.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePreview serves GET /api/portfolios/{idOrSlug}/preview: the composition the public
// page would render, as JSON.
func (h *PortfolioHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.svc.GetOwned(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render.Preview(*p))
}

// HandleUpdate serves PATCH /api/portfolios/{id}. The body is a PortfolioDelta; absent
// fields are left untouched.
func (h *PortfolioHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var delta model.PortfolioDelta
	if err := decodeJSON(w, r, &delta); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleClick serves the public POST /api/portfolios/{id}/links/{linkID}/click.
func (h *PortfolioHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	id, linkID := chi.URLParam(r, "id"), chi.URLParam(r, "linkID")

	n, err := h.svc.RecordClick(r.Context(), id, linkID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"clicks": n})
}
