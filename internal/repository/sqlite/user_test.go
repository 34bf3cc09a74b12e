package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

func TestUpsert_NewUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, 12345, "ada")
	if user.ID == "" {
		t.Fatal("Upsert() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Upsert() did not set timestamps")
	}

	got, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Login != "ada" || got.GitHubID != 12345 {
		t.Errorf("got %+v", got)
	}
	if got.SocialLinks == nil || len(got.SocialLinks) != 0 {
		t.Errorf("SocialLinks = %#v, want empty slice", got.SocialLinks)
	}
}

func TestUpsert_ExistingUserKeepsID(t *testing.T) {
	db := newTestDB(t)
	first := createTestUser(t, db, 777, "old-login")

	again := &model.User{GitHubID: 777, Login: "new-login", Email: "new@example.com"}
	if err := db.Upsert(context.Background(), again); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("ID = %q, want %q", again.ID, first.ID)
	}

	got, err := db.GetUserByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Login != "new-login" {
		t.Errorf("Login = %q, want new-login", got.Login)
	}
}

func TestUpsert_KeepsUploadedAvatar(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 42, "ada")

	user.AvatarURL = "/uploads/abc.png"
	if err := db.UpdateProfile(context.Background(), user); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	login := &model.User{GitHubID: 42, Login: "ada", AvatarURL: "https://avatars.githubusercontent.com/u/999"}
	if err := db.Upsert(context.Background(), login); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, _ := db.GetUserByID(context.Background(), user.ID)
	if got.AvatarURL != "/uploads/abc.png" {
		t.Errorf("AvatarURL = %q, want uploaded avatar kept", got.AvatarURL)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "ada")

	user.Bio = "hello"
	user.SocialLinks = []model.SocialLink{
		{ID: "github-1", Name: "GitHub", URL: "https://github.com/ada", IsEnabled: true},
	}
	if err := db.UpdateProfile(context.Background(), user); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Bio != "hello" {
		t.Errorf("Bio = %q, want hello", got.Bio)
	}
	if len(got.SocialLinks) != 1 || got.SocialLinks[0].URL != "https://github.com/ada" {
		t.Errorf("SocialLinks = %+v", got.SocialLinks)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateProfile(context.Background(), &model.User{ID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
