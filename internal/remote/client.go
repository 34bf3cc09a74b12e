// Package remote is the HTTP client for the 2share API.
//
// One Client implements every collaborator the editor needs: the portfolio, profile, plan,
// upload and click services. Requests carry the API token as a bearer header through an
// oauth2 static token source. Error responses are decoded back into apperror sentinels so
// callers match them with errors.Is exactly as they would server side.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. An empty token sends unauthenticated requests, which
// only the public endpoints accept.
func New(baseURL, token string) *Client {
	var hc *http.Client
	if token == "" {
		hc = &http.Client{Timeout: defaultTimeout}
	} else {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: defaultTimeout})
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		hc.Timeout = defaultTimeout
	}
	return NewWithHTTPClient(baseURL, hc)
}

// NewWithHTTPClient uses hc as is.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// =========================================================================
// PORTFOLIOS
// =========================================================================

func (c *Client) CreatePortfolio(ctx context.Context, p model.Portfolio) (*model.Portfolio, error) {
	var out model.Portfolio
	if err := c.do(ctx, http.MethodPost, "/api/portfolios", p, &out); err != nil {
		return nil, fmt.Errorf("create portfolio: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdatePortfolio(ctx context.Context, id string, delta model.PortfolioDelta) error {
	if err := c.do(ctx, http.MethodPatch, "/api/portfolios/"+url.PathEscape(id), delta, nil); err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	return nil
}

func (c *Client) GetPortfolio(ctx context.Context, idOrSlug string) (*model.Portfolio, error) {
	var out model.Portfolio
	if err := c.do(ctx, http.MethodGet, "/api/portfolios/"+url.PathEscape(idOrSlug), nil, &out); err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return &out, nil
}

func (c *Client) ListPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	var out []model.Portfolio
	if err := c.do(ctx, http.MethodGet, "/api/portfolios", nil, &out); err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	return out, nil
}

// =========================================================================
// PROFILE, PLAN
// =========================================================================

func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, delta model.ProfileDelta) (*model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/profile", delta, &out); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &out, nil
}

func (c *Client) GetCurrentPlan(ctx context.Context) (*model.Plan, error) {
	var out model.Plan
	if err := c.do(ctx, http.MethodGet, "/api/plan", nil, &out); err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &out, nil
}

// =========================================================================
// UPLOADS, CLICKS
// =========================================================================

// Upload posts r as a multipart "file" field and returns the stored URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("upload: reading file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", &body)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return out.URL, nil
}

func (c *Client) RecordClick(ctx context.Context, portfolioID, linkID string) error {
	path := "/api/portfolios/" + url.PathEscape(portfolioID) + "/links/" + url.PathEscape(linkID) + "/click"
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

// =========================================================================
// TRANSPORT
// =========================================================================

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// sentinels maps the API's error types back to domain errors.
var sentinels = map[string]error{
	"not_found":        apperror.ErrNotFound,
	"validation_error": apperror.ErrValidation,
	"forbidden":        apperror.ErrForbidden,
	"conflict":         apperror.ErrConflict,
	"quota_exceeded":   apperror.ErrQuotaExceeded,
	"plan_unavailable": apperror.ErrPlanUnavailable,
	"duplicate_link":   apperror.ErrDuplicateLink,
}

// StatusError is returned for responses that carry no known error type.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil {
		if sentinel, ok := sentinels[er.Error]; ok {
			return &apperror.AppError{Err: sentinel, Message: er.Message, Field: er.Field}
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return &apperror.AppError{Err: apperror.ErrForbidden, Message: "not authenticated"}
	}
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
