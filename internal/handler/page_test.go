package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/handler"
	"github.com/bug-createdme/2share/internal/model"
)

func pageRouter(svc *stubPortfolios) http.Handler {
	h := handler.NewPageHandler(svc, newTestLogger())
	return newRouter("", func(r chi.Router) {
		r.Get("/p/{id}", h.HandlePublic)
	})
}

func TestHandlePublic_RendersPage(t *testing.T) {
	svc := &stubPortfolios{
		getFn: func(idOrSlug string) (*model.Portfolio, error) {
			assert.Equal(t, "jane", idOrSlug)
			return &model.Portfolio{
				ID:    "p-1",
				Slug:  "jane",
				Title: "Jane <Doe>",
				SocialLinks: []model.SocialLink{
					{ID: "l1", Name: "GitHub", URL: "https://github.com/jane", IsEnabled: true},
					{ID: "l2", Name: "Hidden", URL: "https://example.com", IsEnabled: false},
				},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	pageRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p/jane", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Jane &lt;Doe&gt;")
	assert.Contains(t, body, "https://github.com/jane")
	assert.NotContains(t, body, "Hidden")
}

func TestHandlePublic_NotFound(t *testing.T) {
	svc := &stubPortfolios{
		getFn: func(idOrSlug string) (*model.Portfolio, error) {
			return nil, apperror.PortfolioNotFound(idOrSlug, nil)
		},
	}

	rec := httptest.NewRecorder()
	pageRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p/nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePublic_InternalError(t *testing.T) {
	svc := &stubPortfolios{
		getFn: func(string) (*model.Portfolio, error) { return nil, errors.New("db gone") },
	}

	rec := httptest.NewRecorder()
	pageRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p/jane", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db gone")
}
