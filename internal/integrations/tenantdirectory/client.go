package tenantdirectory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client клиент для работы с Tenant Directory
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Tenant Directory
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetTenantBySlug получает арендатора по slug публичной страницы
func (c *Client) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return c.getTenant(ctx, fmt.Sprintf("%s/internal/tenants/by-slug/%s", c.baseURL, url.PathEscape(slug)))
}

// GetTenantByID получает арендатора по ID
func (c *Client) GetTenantByID(ctx context.Context, tenantID string) (*Tenant, error) {
	return c.getTenant(ctx, fmt.Sprintf("%s/internal/tenants/%s", c.baseURL, url.PathEscape(tenantID)))
}

func (c *Client) getTenant(ctx context.Context, endpoint string) (*Tenant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Tenant Directory request failed: url=%s, error=%v", endpoint, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrTenantNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var tenant Tenant
	if err := json.NewDecoder(resp.Body).Decode(&tenant); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if tenant.ID == "" {
		return nil, fmt.Errorf("%w: tenant id is empty", ErrInvalidResponse)
	}

	return &tenant, nil
}
