package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/model"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, delta model.ProfileDelta) (*model.Profile, error)
}

type PlanService interface {
	Current(ctx context.Context, userID string) (*model.Plan, error)
}

// AccountHandler serves the caller's profile and plan.
type AccountHandler struct {
	profiles ProfileService
	plans    PlanService
	logger   *slog.Logger
}

func NewAccountHandler(profiles ProfileService, plans PlanService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{profiles: profiles, plans: plans, logger: logger}
}

// HandleGetProfile serves GET /api/profile.
func (h *AccountHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdateProfile serves PATCH /api/profile with a ProfileDelta body.
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var delta model.ProfileDelta
	if err := decodeJSON(w, r, &delta); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), userID, delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetPlan serves GET /api/plan.
func (h *AccountHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	p, err := h.plans.Current(r.Context(), userID)
	if err != nil {
		h.logger.Error("plan lookup failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
