package sqlite

import (
	"context"
	"testing"

	"github.com/bug-createdme/2share/internal/model"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, githubID int64, login string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:  githubID,
		Login:     login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/123",
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPortfolio(t *testing.T, db *DB, ownerID, slug string) *model.Portfolio {
	t.Helper()
	p := &model.Portfolio{
		Slug:    slug,
		OwnerID: ownerID,
		Title:   "Portfolio " + slug,
	}
	if err := db.CreatePortfolio(context.Background(), p); err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return p
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
