package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or refreshes a user keyed by GitHub ID.
//
// An existing user keeps their internal ID and profile; only the GitHub-sourced fields
// (login, email, avatar) are refreshed. The avatar is refreshed only while the user has
// not uploaded one of their own, which we detect by the stored value still pointing at
// GitHub's avatar host.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now().UTC()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users
			 SET login = ?, email = ?,
			     avatar_url = CASE WHEN avatar_url = '' OR avatar_url LIKE 'https://avatars.githubusercontent.com/%'
			                       THEN ? ELSE avatar_url END,
			     updated_at = ?
			 WHERE id = ?`,
			user.Login, user.Email, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	links, err := encodeLinks(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, email, avatar_url, bio, social_links, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.GitHubID, user.Login, user.Email, user.AvatarURL,
		user.Bio, links, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", fmt.Sprint(user.GitHubID))
		}
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// GetUserByID returns apperror.ErrNotFound if no user has that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var (
		u     model.User
		links string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, email, avatar_url, bio, social_links, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL,
		&u.Bio, &links, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(links), &u.SocialLinks); err != nil {
		return nil, fmt.Errorf("sqlite: decoding social links of user %s: %w", id, err)
	}
	return &u, nil
}

// UpdateProfile writes the profile fields (bio, avatar, social links) of user.
func (db *DB) UpdateProfile(ctx context.Context, user *model.User) error {
	links, err := encodeLinks(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", user.ID, err)
	}
	user.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET bio = ?, avatar_url = ?, social_links = ?, updated_at = ? WHERE id = ?`,
		user.Bio, user.AvatarURL, links, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", user.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}

func encodeLinks(links []model.SocialLink) (string, error) {
	if links == nil {
		links = []model.SocialLink{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("encoding social links: %w", err)
	}
	return string(b), nil
}
