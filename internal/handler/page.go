package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/render"
)

// PageHandler serves the public portfolio page.
type PageHandler struct {
	portfolios PortfolioService
	logger     *slog.Logger
}

func NewPageHandler(portfolios PortfolioService, logger *slog.Logger) *PageHandler {
	return &PageHandler{portfolios: portfolios, logger: logger}
}

// HandlePublic serves GET /p/{idOrSlug}. The page is rendered into a buffer first so a
// template failure still produces a clean 500.
func (h *PageHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	p, err := h.portfolios.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, "portfolio not found", http.StatusNotFound)
			return
		}
		h.logger.Error("public page lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, render.Public(*p)); err != nil {
		h.logger.Error("failed to render public page",
			slog.String("id", p.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	_, _ = buf.WriteTo(w)
}
