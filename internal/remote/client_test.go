package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

func newTestServer(t *testing.T, setup func(r chi.Router)) *Client {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "tok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateAndGetPortfolio(t *testing.T) {
	c := newTestServer(t, func(r chi.Router) {
		r.Post("/api/portfolios", func(w http.ResponseWriter, req *http.Request) {
			var p model.Portfolio
			require.NoError(t, json.NewDecoder(req.Body).Decode(&p))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			p.ID, p.Slug = "p1", "ada"
			writeJSON(w, http.StatusCreated, p)
		})
		r.Get("/api/portfolios/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, model.Portfolio{ID: chi.URLParam(req, "id"), Title: "Ada"})
		})
	})

	created, err := c.CreatePortfolio(context.Background(), model.Portfolio{Title: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	assert.Equal(t, "ada", created.Slug)

	got, err := c.GetPortfolio(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.ID)
}

func TestUpdatePortfolio_SendsDelta(t *testing.T) {
	var got map[string]any
	c := newTestServer(t, func(r chi.Router) {
		r.Patch("/api/portfolios/{id}", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "p1", chi.URLParam(req, "id"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		})
	})

	require.NoError(t, c.UpdatePortfolio(context.Background(), "p1", model.TitleDelta("new")))
	assert.Equal(t, map[string]any{"title": "new"}, got)
}

func TestErrorsMapToSentinels(t *testing.T) {
	tests := []struct {
		errType string
		status  int
		want    error
	}{
		{"not_found", http.StatusNotFound, apperror.ErrNotFound},
		{"quota_exceeded", http.StatusPaymentRequired, apperror.ErrQuotaExceeded},
		{"plan_unavailable", http.StatusServiceUnavailable, apperror.ErrPlanUnavailable},
		{"duplicate_link", http.StatusConflict, apperror.ErrDuplicateLink},
		{"validation_error", http.StatusBadRequest, apperror.ErrValidation},
		{"forbidden", http.StatusForbidden, apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.errType, func(t *testing.T) {
			c := newTestServer(t, func(r chi.Router) {
				r.Get("/api/portfolios/{id}", func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, tt.status, errorResponse{Error: tt.errType, Message: "nope"})
				})
			})
			_, err := c.GetPortfolio(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnknownErrorKeepsStatus(t *testing.T) {
	c := newTestServer(t, func(r chi.Router) {
		r.Get("/api/plan", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})
	})

	_, err := c.GetCurrentPlan(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestMissingTokenIsForbidden(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/profile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, err := New(srv.URL, "").GetProfile(context.Background())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUpload(t *testing.T) {
	c := newTestServer(t, func(r chi.Router) {
		r.Post("/api/uploads", func(w http.ResponseWriter, req *http.Request) {
			f, hdr, err := req.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			b, _ := io.ReadAll(f)
			assert.Equal(t, "avatar.png", hdr.Filename)
			assert.Equal(t, "PNGDATA", string(b))
			writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/abc.png"})
		})
	})

	u, err := c.Upload(context.Background(), "avatar.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", u)
}

func TestRecordClickAndPlan(t *testing.T) {
	clicked := ""
	c := newTestServer(t, func(r chi.Router) {
		r.Post("/api/portfolios/{id}/links/{linkID}/click", func(w http.ResponseWriter, req *http.Request) {
			clicked = chi.URLParam(req, "id") + "/" + chi.URLParam(req, "linkID")
			writeJSON(w, http.StatusOK, map[string]int64{"clicks": 3})
		})
		r.Get("/api/plan", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, model.FreePlan())
		})
		r.Get("/api/portfolios", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []model.Portfolio{{ID: "a"}, {ID: "b"}})
		})
	})

	require.NoError(t, c.RecordClick(context.Background(), "p1", "github-x"))
	assert.Equal(t, "p1/github-x", clicked)

	plan, err := c.GetCurrentPlan(context.Background())
	require.NoError(t, err)
	assert.True(t, plan.Active())
	assert.Equal(t, 5, *plan.MaxSocialLinks)

	list, err := c.ListPortfolios(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProfile(t *testing.T) {
	c := newTestServer(t, func(r chi.Router) {
		r.Get("/api/profile", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, model.Profile{Name: "ada", Bio: "hi"})
		})
		r.Patch("/api/profile", func(w http.ResponseWriter, req *http.Request) {
			var d model.ProfileDelta
			require.NoError(t, json.NewDecoder(req.Body).Decode(&d))
			writeJSON(w, http.StatusOK, model.Profile{Name: "ada", Bio: *d.Bio})
		})
	})

	p, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Bio)

	bio := "updated"
	p, err = c.UpdateProfile(context.Background(), model.ProfileDelta{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "updated", p.Bio)
}
