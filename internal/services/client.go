package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"avviso/internal/platform/config"
	"avviso/pkg/domain"
	dErrors "avviso/pkg/domain-errors"
)

// apiKeyHeader carries the management API key on every upstream call.
const apiKeyHeader = "Ocp-Apim-Subscription-Key"

// ServiceDetail is the upstream's view of one sender service.
type ServiceDetail struct {
	ServiceID               domain.ServiceID `json:"service_id"`
	ServiceName             string           `json:"service_name"`
	OrganizationName        string           `json:"organization_name"`
	DepartmentName          string           `json:"department_name"`
	OrganizationFiscalCode  string           `json:"organization_fiscal_code"`
	AuthorizedRecipients    []string         `json:"authorized_recipients,omitempty"`
	AuthorizedCIDRs         []string         `json:"authorized_cidrs,omitempty"`
	IsVisible               bool             `json:"is_visible"`
	MaxAllowedPaymentAmount int64            `json:"max_allowed_payment_amount"`
	RequireSecureChannels   bool             `json:"require_secure_channels"`
}

// SubscriptionKeys are the API keys bound to a service's subscription.
type SubscriptionKeys struct {
	PrimaryKey   string `json:"primary_key"`
	SecondaryKey string `json:"secondary_key"`
}

// Client calls the upstream administrative API. Responses are decoded into
// typed values; upstream failures come back as coded domain errors so the
// HTTP layer can map them without inspecting strings.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.AdminAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) GetService(ctx context.Context, serviceID domain.ServiceID) (*ServiceDetail, error) {
	var detail ServiceDetail
	err := c.getJSON(ctx, fmt.Sprintf("%s/services/%s", c.baseURL, serviceID), &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) GetSubscriptionKeys(ctx context.Context, serviceID domain.ServiceID) (*SubscriptionKeys, error) {
	var keys SubscriptionKeys
	err := c.getJSON(ctx, fmt.Sprintf("%s/services/%s/keys", c.baseURL, serviceID), &keys)
	if err != nil {
		return nil, err
	}
	return &keys, nil
}

// UploadLogo forwards a base64 logo to the upstream. The upstream answers
// 201 on acceptance.
func (c *Client) UploadLogo(ctx context.Context, serviceID domain.ServiceID, logoBase64 string) error {
	body, err := json.Marshal(map[string]string{"logo": logoBase64})
	if err != nil {
		return fmt.Errorf("encode logo payload: %w", err)
	}

	url := fmt.Sprintf("%s/services/%s/logo", c.baseURL, serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build logo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.New(dErrors.CodeUpstream, "admin API unreachable")
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	default:
		return upstreamError(resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.New(dErrors.CodeUpstream, "admin API unreachable")
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return upstreamError(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.New(dErrors.CodeUpstream, "admin API returned an undecodable response")
	}
	return nil
}

func upstreamError(status int) error {
	switch status {
	case http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, "service not found")
	case http.StatusBadRequest:
		return dErrors.New(dErrors.CodeBadRequest, "admin API rejected the request")
	default:
		return dErrors.New(dErrors.CodeUpstream, fmt.Sprintf("admin API returned status %d", status))
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
