package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/handler"
	"github.com/bug-createdme/2share/internal/model"
)

type stubProfiles struct {
	profile *model.Profile
	err     error
	got     model.ProfileDelta
}

func (s *stubProfiles) Get(context.Context, string) (*model.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) Update(_ context.Context, _ string, delta model.ProfileDelta) (*model.Profile, error) {
	s.got = delta
	if s.err != nil {
		return nil, s.err
	}
	p := *s.profile
	if delta.Bio != nil {
		p.Bio = *delta.Bio
	}
	return &p, nil
}

type stubPlans struct {
	plan *model.Plan
	err  error
}

func (s *stubPlans) Current(context.Context, string) (*model.Plan, error) {
	return s.plan, s.err
}

func accountRouter(profiles *stubProfiles, plans *stubPlans) http.Handler {
	h := handler.NewAccountHandler(profiles, plans, newTestLogger())
	return newRouter("u1", func(r chi.Router) {
		r.Get("/api/profile", h.HandleGetProfile)
		r.Patch("/api/profile", h.HandleUpdateProfile)
		r.Get("/api/plan", h.HandleGetPlan)
	})
}

func TestHandleGetProfile(t *testing.T) {
	profiles := &stubProfiles{profile: &model.Profile{UserID: "u1", Name: "jane", SocialLinks: []model.SocialLink{}}}

	rec := httptest.NewRecorder()
	accountRouter(profiles, &stubPlans{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"jane"`)
}

func TestHandleUpdateProfile(t *testing.T) {
	profiles := &stubProfiles{profile: &model.Profile{UserID: "u1"}}

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", strings.NewReader(`{"bio":"hello"}`))
	rec := httptest.NewRecorder()
	accountRouter(profiles, &stubPlans{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, profiles.got.Bio)
	assert.Equal(t, "hello", *profiles.got.Bio)
	assert.Nil(t, profiles.got.AvatarURL)
	assert.Contains(t, rec.Body.String(), `"bio":"hello"`)
}

func TestHandleUpdateProfile_Invalid(t *testing.T) {
	profiles := &stubProfiles{err: apperror.ValidationFailed("avatarUrl", "avatar URL is not valid")}

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", strings.NewReader(`{"avatarUrl":"ftp://x"}`))
	rec := httptest.NewRecorder()
	accountRouter(profiles, &stubPlans{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "avatarUrl", decodeError(t, rec).Field)
}

func TestHandleGetPlan(t *testing.T) {
	free := model.FreePlan()

	rec := httptest.NewRecorder()
	accountRouter(&stubProfiles{}, &stubPlans{plan: &free}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"maxSocialLinks":5`)
}

func TestHandleGetPlan_Unavailable(t *testing.T) {
	plans := &stubPlans{err: apperror.PlanUnavailable(errors.New("db down"))}

	rec := httptest.NewRecorder()
	accountRouter(&stubProfiles{}, plans).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plan", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "plan_unavailable", decodeError(t, rec).Error)
}
