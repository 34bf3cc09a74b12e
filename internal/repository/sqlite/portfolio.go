package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.PortfolioRepository = (*DB)(nil)

const portfolioColumns = `id, slug, owner_id, title, bio, blocks, avatar_url, social_links,
	design_settings, created_at, updated_at`

// CreatePortfolio inserts p, assigning a time-ordered UUID and timestamps.
// A taken slug returns apperror.ErrConflict.
func (db *DB) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("sqlite: generating portfolio id: %w", err)
	}
	now := time.Now().UTC()
	p.ID = id.String()
	p.CreatedAt = now
	p.UpdatedAt = now

	docs, err := encodeDocuments(p)
	if err != nil {
		return fmt.Errorf("sqlite: creating portfolio: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO portfolios (`+portfolioColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Slug, p.OwnerID, p.Title, p.Bio,
		docs.blocks, p.AvatarURL, docs.links, docs.design,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("portfolio slug", p.Slug)
		}
		return fmt.Errorf("sqlite: creating portfolio: %w", err)
	}
	return nil
}

func (db *DB) GetPortfolio(ctx context.Context, id string) (*model.Portfolio, error) {
	return db.getPortfolio(ctx, "id", id)
}

func (db *DB) GetPortfolioBySlug(ctx context.Context, slug string) (*model.Portfolio, error) {
	return db.getPortfolio(ctx, "slug", slug)
}

func (db *DB) getPortfolio(ctx context.Context, column, value string) (*model.Portfolio, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE `+column+` = ?`,
		value,
	)
	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.PortfolioNotFound(value, nil)
		}
		return nil, fmt.Errorf("sqlite: getting portfolio %s: %w", value, err)
	}

	if err := db.attachClicks(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPortfolios returns the owner's portfolios, oldest first.
func (db *DB) ListPortfolios(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Portfolio, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+portfolioColumns+`
		 FROM portfolios
		 WHERE owner_id = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing portfolios: %w", err)
	}
	defer rows.Close()

	out := make([]model.Portfolio, 0)
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning portfolio row: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating portfolios: %w", err)
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
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE owner_id = ?`, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting portfolios: %w", err)
	}
	return n, nil
}

// UpdatePortfolio overwrites every mutable column of p.
func (db *DB) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	p.UpdatedAt = time.Now().UTC()
	docs, err := encodeDocuments(p)
	if err != nil {
		return fmt.Errorf("sqlite: updating portfolio %s: %w", p.ID, err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE portfolios
		 SET title = ?, bio = ?, blocks = ?, avatar_url = ?, social_links = ?,
		     design_settings = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Bio, docs.blocks, p.AvatarURL, docs.links, docs.design,
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating portfolio %s: %w", p.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.PortfolioNotFound(p.ID, nil)
	}
	return nil
}

func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE slug = ?`, slug,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// IncrementClicks adds one click and returns the new total.
func (db *DB) IncrementClicks(ctx context.Context, portfolioID, linkID string) (int64, error) {
	var clicks int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO link_clicks (portfolio_id, link_id, clicks) VALUES (?, ?, 1)
		 ON CONFLICT (portfolio_id, link_id) DO UPDATE SET clicks = clicks + 1
		 RETURNING clicks`,
		portfolioID, linkID,
	).Scan(&clicks)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperror.PortfolioNotFound(portfolioID, nil)
		}
		return 0, fmt.Errorf("sqlite: incrementing clicks for %s/%s: %w", portfolioID, linkID, err)
	}
	return clicks, nil
}

func (db *DB) attachClicks(ctx context.Context, p *model.Portfolio) error {
	if len(p.SocialLinks) == 0 {
		return nil
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT link_id, clicks FROM link_clicks WHERE portfolio_id = ?`, p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading clicks for %s: %w", p.ID, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("sqlite: scanning clicks: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating clicks: %w", err)
	}

	for i := range p.SocialLinks {
		p.SocialLinks[i].Clicks = counts[p.SocialLinks[i].ID]
	}
	return nil
}

// =========================================================================
// ROW ENCODING
// =========================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

type documents struct {
	blocks, links, design string
}

func encodeDocuments(p *model.Portfolio) (documents, error) {
	var d documents
	blocks := p.Blocks
	if blocks == nil {
		blocks = []model.ContentBlock{}
	}
	links := p.SocialLinks
	if links == nil {
		links = []model.SocialLink{}
	}

	for _, f := range []struct {
		dst *string
		v   any
	}{{&d.blocks, blocks}, {&d.links, links}, {&d.design, p.Design}} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return d, fmt.Errorf("encoding document: %w", err)
		}
		*f.dst = string(b)
	}
	return d, nil
}

func scanPortfolio(row rowScanner) (*model.Portfolio, error) {
	var (
		p                     model.Portfolio
		blocks, links, design string
	)
	if err := row.Scan(
		&p.ID, &p.Slug, &p.OwnerID, &p.Title, &p.Bio,
		&blocks, &p.AvatarURL, &links, &design,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(blocks), &p.Blocks); err != nil {
		return nil, fmt.Errorf("decoding blocks: %w", err)
	}
	if err := json.Unmarshal([]byte(links), &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decoding social links: %w", err)
	}
	if err := json.Unmarshal([]byte(design), &p.Design); err != nil {
		return nil, fmt.Errorf("decoding design settings: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
