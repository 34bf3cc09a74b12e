package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts a user or refreshes the GitHub-sourced fields of an existing one.
// An uploaded avatar is kept.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	links, err := encodeLinks(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("postgres: upserting user: %w", err)
	}

	const q = `
INSERT INTO users (id, github_id, login, email, avatar_url, bio, social_links, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (github_id) DO UPDATE SET
    login = EXCLUDED.login,
    email = EXCLUDED.email,
    avatar_url = CASE WHEN users.avatar_url = '' OR users.avatar_url LIKE 'https://avatars.githubusercontent.com/%'
                      THEN EXCLUDED.avatar_url ELSE users.avatar_url END,
    updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`
	err = db.Pool.QueryRow(ctx, q,
		xid.New().String(), user.GitHubID, user.Login, user.Email, user.AvatarURL,
		user.Bio, links, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
SELECT id, github_id, login, email, avatar_url, bio, social_links, created_at, updated_at
FROM users WHERE id=$1`
	var (
		u     model.User
		links []byte
	)
	err := db.Pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL,
		&u.Bio, &links, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
		return nil, fmt.Errorf("postgres: decoding social links of user %s: %w", id, err)
	}
	return &u, nil
}

func (db *DB) UpdateProfile(ctx context.Context, user *model.User) error {
	links, err := encodeLinks(user.SocialLinks)
	if err != nil {
		return fmt.Errorf("postgres: updating profile %s: %w", user.ID, err)
	}
	user.UpdatedAt = time.Now().UTC()

	const q = `
UPDATE users SET bio=$2, avatar_url=$3, social_links=$4, updated_at=$5
WHERE id=$1`
	tag, err := db.Pool.Exec(ctx, q, user.ID, user.Bio, user.AvatarURL, links, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: updating profile %s: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user", user.ID)
	}
	return nil
}
