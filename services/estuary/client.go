// Package estuary is the HTTP client for the Estuary REST API.
package estuary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"estuary/models"
)

// API is the subset of the Estuary API the wizard and handlers depend on.
type API interface {
	Catalog

	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CurrentUser(ctx context.Context) (*models.CurrentUser, error)
	PractitionerProfile(ctx context.Context) (*models.PractitionerSummary, error)

	GetService(ctx context.Context, id string) (*models.ServiceRecord, error)
	CreateService(ctx context.Context, req models.ServiceRequest) (*models.ServiceRecord, error)
	UpdateService(ctx context.Context, id string, req models.ServiceRequest) (*models.ServiceRecord, error)

	ListQuestions(ctx context.Context, serviceID string) ([]models.ServiceQuestion, error)
	CreateQuestion(ctx context.Context, serviceID string, in models.QuestionInput) (*models.ServiceQuestion, error)
	DeleteQuestion(ctx context.Context, serviceID, questionID string) error

	RequestUploadURL(ctx context.Context, req UploadURLRequest) (*models.UploadTarget, error)
	ConfirmUpload(ctx context.Context, mediaID string) (*models.UploadedFile, error)
}

// Catalog holds the read-only lookups the wizard populates its selects from.
type Catalog interface {
	ServiceTypes(ctx context.Context) ([]models.ServiceTypeInfo, error)
	Categories(ctx context.Context) ([]models.Category, error)
	PractitionerCategories(ctx context.Context) ([]models.PractitionerCategory, error)
	Modalities(ctx context.Context) ([]models.Modality, error)
	Schedules(ctx context.Context) ([]models.Schedule, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]models.ServiceRecord, error)
	SearchPractitioners(ctx context.Context, query string) ([]models.PractitionerSummary, error)
}

type LoginResult struct {
	AccessToken string             `json:"access_token"`
	User        models.CurrentUser `json:"user"`
}

type ServiceFilter struct {
	PractitionerID string
	ServiceType    models.ServiceType
	ActiveOnly     bool
}

type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"file_size"`
	EntityType  string `json:"entity_type"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// listEnvelope accepts both paginated {"results": [...]} and bare array bodies.
type listEnvelope[T any] struct {
	Results []T
}

func (l *listEnvelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Results)
	}
	var page struct {
		Results []T `json:"results"`
		Data    []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	l.Results = page.Results
	if l.Results == nil {
		l.Results = page.Data
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Estuary API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Estuary API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Warn("Estuary API error response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response carried no token", ErrUnavailable)
	}
	return &out, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	var out models.CurrentUser
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PractitionerProfile(ctx context.Context) (*models.PractitionerSummary, error) {
	var out models.PractitionerSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/practitioners/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ServiceTypes(ctx context.Context) ([]models.ServiceTypeInfo, error) {
	var out listEnvelope[models.ServiceTypeInfo]
	if err := c.do(ctx, http.MethodGet, "/api/v1/service-types", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out listEnvelope[models.Category]
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) PractitionerCategories(ctx context.Context) ([]models.PractitionerCategory, error) {
	var out listEnvelope[models.PractitionerCategory]
	if err := c.do(ctx, http.MethodGet, "/api/v1/practitioner-categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Modalities(ctx context.Context) ([]models.Modality, error) {
	var out listEnvelope[models.Modality]
	if err := c.do(ctx, http.MethodGet, "/api/v1/modalities", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Schedules(ctx context.Context) ([]models.Schedule, error) {
	var out listEnvelope[models.Schedule]
	if err := c.do(ctx, http.MethodGet, "/api/v1/schedules", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) ListServices(ctx context.Context, filter ServiceFilter) ([]models.ServiceRecord, error) {
	q := url.Values{}
	if filter.PractitionerID != "" {
		q.Set("practitioner_id", filter.PractitionerID)
	}
	if filter.ServiceType != "" {
		q.Set("service_type", string(filter.ServiceType))
	}
	if filter.ActiveOnly {
		q.Set("is_active", "true")
	}
	var out listEnvelope[models.ServiceRecord]
	if err := c.do(ctx, http.MethodGet, "/api/v1/services", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) SearchPractitioners(ctx context.Context, query string) ([]models.PractitionerSummary, error) {
	q := url.Values{}
	q.Set("search", query)
	var out listEnvelope[models.PractitionerSummary]
	if err := c.do(ctx, http.MethodGet, "/api/v1/practitioners", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*models.ServiceRecord, error) {
	var out models.ServiceRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/services/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateService(ctx context.Context, req models.ServiceRequest) (*models.ServiceRecord, error) {
	var out models.ServiceRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/services", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateService(ctx context.Context, id string, req models.ServiceRequest) (*models.ServiceRecord, error) {
	var out models.ServiceRecord
	if err := c.do(ctx, http.MethodPatch, "/api/v1/services/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func questionsPath(serviceID string) string {
	return "/api/v1/services/" + url.PathEscape(serviceID) + "/questions"
}

func (c *Client) ListQuestions(ctx context.Context, serviceID string) ([]models.ServiceQuestion, error) {
	var out listEnvelope[models.ServiceQuestion]
	if err := c.do(ctx, http.MethodGet, questionsPath(serviceID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) CreateQuestion(ctx context.Context, serviceID string, in models.QuestionInput) (*models.ServiceQuestion, error) {
	var out models.ServiceQuestion
	if err := c.do(ctx, http.MethodPost, questionsPath(serviceID), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, serviceID, questionID string) error {
	return c.do(ctx, http.MethodDelete, questionsPath(serviceID)+"/"+url.PathEscape(questionID), nil, nil, nil)
}

// RequestUploadURL is step one of the upload handshake.
func (c *Client) RequestUploadURL(ctx context.Context, req UploadURLRequest) (*models.UploadTarget, error) {
	var out models.UploadTarget
	if err := c.do(ctx, http.MethodPost, "/api/v1/media/upload-url", nil, req, &out); err != nil {
		return nil, err
	}
	if out.UploadURL == "" {
		return nil, fmt.Errorf("%w: upload target has no url", ErrUnavailable)
	}
	return &out, nil
}

// ConfirmUpload is the last step of the upload handshake.
func (c *Client) ConfirmUpload(ctx context.Context, mediaID string) (*models.UploadedFile, error) {
	var out struct {
		ID          string `json:"id"`
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
		FileSize    int64  `json:"file_size"`
	}
	path := "/api/v1/media/" + url.PathEscape(mediaID) + "/confirm"
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &models.UploadedFile{
		MediaID:     mediaID,
		URL:         out.URL,
		ContentType: out.ContentType,
		Size:        out.FileSize,
	}, nil
}
