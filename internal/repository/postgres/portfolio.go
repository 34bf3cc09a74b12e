package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.PortfolioRepository = (*DB)(nil)

const portfolioColumns = `id, slug, owner_id, title, bio, blocks, avatar_url, social_links, design_settings, created_at, updated_at`

func (db *DB) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("postgres: generating portfolio id: %w", err)
	}
	now := time.Now().UTC()
	p.ID = id.String()
	p.CreatedAt = now
	p.UpdatedAt = now

	blocks, links, design, err := encodeDocuments(p)
	if err != nil {
		return fmt.Errorf("postgres: creating portfolio: %w", err)
	}

	const q = `
INSERT INTO portfolios (` + portfolioColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = db.Pool.Exec(ctx, q,
		p.ID, p.Slug, p.OwnerID, p.Title, p.Bio, blocks, p.AvatarURL, links, design,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("portfolio slug", p.Slug)
		}
		return fmt.Errorf("postgres: creating portfolio: %w", err)
	}
	return nil
}

func (db *DB) GetPortfolio(ctx context.Context, id string) (*model.Portfolio, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.PortfolioNotFound(id, nil)
	}
	return db.getPortfolio(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE id=$1`, id)
}

func (db *DB) GetPortfolioBySlug(ctx context.Context, slug string) (*model.Portfolio, error) {
	return db.getPortfolio(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE slug=$1`, slug)
}

func (db *DB) getPortfolio(ctx context.Context, q, key string) (*model.Portfolio, error) {
	p, err := scanPortfolio(db.Pool.QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.PortfolioNotFound(key, nil)
		}
		return nil, fmt.Errorf("postgres: getting portfolio %s: %w", key, err)
	}
	if err := db.attachClicks(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) ListPortfolios(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Portfolio, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, 100)
	offset := max(opts.Offset, 0)

	const q = `
SELECT ` + portfolioColumns + `
FROM portfolios
WHERE owner_id=$1
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3`
	rows, err := db.Pool.Query(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing portfolios: %w", err)
	}
	defer rows.Close()

	out := make([]model.Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning portfolio row: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating portfolios: %w", err)
	}
	rows.Close()

	for i := range out {
		if err := db.attachClicks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) CountPortfolios(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM portfolios WHERE owner_id=$1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting portfolios: %w", err)
	}
	return n, nil
}

func (db *DB) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	p.UpdatedAt = time.Now().UTC()
	blocks, links, design, err := encodeDocuments(p)
	if err != nil {
		return fmt.Errorf("postgres: updating portfolio %s: %w", p.ID, err)
	}

	const q = `
UPDATE portfolios
SET title=$2, bio=$3, blocks=$4, avatar_url=$5, social_links=$6, design_settings=$7, updated_at=$8
WHERE id=$1`
	tag, err := db.Pool.Exec(ctx, q, p.ID, p.Title, p.Bio, blocks, p.AvatarURL, links, design, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: updating portfolio %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.PortfolioNotFound(p.ID, nil)
	}
	return nil
}

func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM portfolios WHERE slug=$1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: checking slug %q: %w", slug, err)
	}
	return exists, nil
}

func (db *DB) IncrementClicks(ctx context.Context, portfolioID, linkID string) (int64, error) {
	const q = `
INSERT INTO link_clicks (portfolio_id, link_id, clicks) VALUES ($1, $2, 1)
ON CONFLICT (portfolio_id, link_id) DO UPDATE SET clicks = link_clicks.clicks + 1
RETURNING clicks`
	var clicks int64
	if err := db.Pool.QueryRow(ctx, q, portfolioID, linkID).Scan(&clicks); err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperror.PortfolioNotFound(portfolioID, nil)
		}
		return 0, fmt.Errorf("postgres: incrementing clicks for %s/%s: %w", portfolioID, linkID, err)
	}
	return clicks, nil
}

func (db *DB) attachClicks(ctx context.Context, p *model.Portfolio) error {
	if len(p.SocialLinks) == 0 {
		return nil
	}
	rows, err := db.Pool.Query(ctx, `SELECT link_id, clicks FROM link_clicks WHERE portfolio_id=$1`, p.ID)
	if err != nil {
		return fmt.Errorf("postgres: loading clicks for %s: %w", p.ID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("postgres: scanning clicks: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: iterating clicks: %w", err)
	}

	for i := range p.SocialLinks {
		p.SocialLinks[i].Clicks = counts[p.SocialLinks[i].ID]
	}
	return nil
}

func encodeDocuments(p *model.Portfolio) (blocks, links, design []byte, err error) {
	b := p.Blocks
	if b == nil {
		b = []model.ContentBlock{}
	}
	if blocks, err = json.Marshal(b); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding blocks: %w", err)
	}
	if links, err = encodeLinks(p.SocialLinks); err != nil {
		return nil, nil, nil, err
	}
	if design, err = json.Marshal(p.Design); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding design settings: %w", err)
	}
	return blocks, links, design, nil
}

func encodeLinks(links []model.SocialLink) ([]byte, error) {
	if links == nil {
		links = []model.SocialLink{}
	}
	b, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("encoding social links: %w", err)
	}
	return b, nil
}

func scanPortfolio(row pgx.Row) (*model.Portfolio, error) {
	var (
		p                     model.Portfolio
		blocks, links, design []byte
	)
	if err := row.Scan(
		&p.ID, &p.Slug, &p.OwnerID, &p.Title, &p.Bio,
		&blocks, &p.AvatarURL, &links, &design,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &p.Blocks); err != nil {
		return nil, fmt.Errorf("decoding blocks: %w", err)
	}
	if err := json.Unmarshal(links, &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decoding social links: %w", err)
	}
	if err := json.Unmarshal(design, &p.Design); err != nil {
		return nil, fmt.Errorf("decoding design settings: %w", err)
	}
	return &p, nil
}
