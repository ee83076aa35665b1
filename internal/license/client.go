package license

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"lukechampine.com/blake3"
)

const defaultBaseURL = "https://api.keygen.sh"

// Client validates license keys against a Keygen-compatible account.
type Client struct {
	baseURL   string
	accountID string
	http      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the service URL. Tests point this at a local server.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a client for the given account. The account ID comes
// from the KEYGEN_ACCOUNT_ID environment variable when constructed via
// NewClientFromEnv.
func NewClient(accountID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		accountID: accountID,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromEnv reads KEYGEN_ACCOUNT_ID from the environment.
func NewClientFromEnv(opts ...ClientOption) (*Client, error) {
	accountID := os.Getenv("KEYGEN_ACCOUNT_ID")
	if accountID == "" {
		return nil, fmt.Errorf("KEYGEN_ACCOUNT_ID not set")
	}
	return NewClient(accountID, opts...), nil
}

// Fingerprint anonymizes this machine's identity for license scoping.
func Fingerprint() string {
	id := machineID()
	sum := blake3.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// machineID prefers the OS machine id and falls back to hostname plus
// platform so the fingerprint stays stable on one box.
func machineID() string {
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(p); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id
			}
		}
	}
	hostname, _ := os.Hostname()
	return hostname + "-" + runtime.GOOS + "-" + runtime.GOARCH
}

// Wire types for the validate-key action.

type validateRequest struct {
	Meta validateMeta `json:"meta"`
}

type validateMeta struct {
	Key   string        `json:"key"`
	Scope validateScope `json:"scope"`
}

type validateScope struct {
	Fingerprint string `json:"fingerprint"`
}

type serviceResponse struct {
	Data   *licenseData    `json:"data"`
	Meta   *validationMeta `json:"meta"`
	Errors []serviceError  `json:"errors"`
}

type validationMeta struct {
	Valid  bool   `json:"valid"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type licenseData struct {
	ID         string            `json:"id"`
	Attributes licenseAttributes `json:"attributes"`
}

type licenseAttributes struct {
	Name      string  `json:"name"`
	Key       string  `json:"key"`
	Expiry    string  `json:"expiry"`
	Status    string  `json:"status"`
	Uses      *uint64 `json:"uses"`
	MaxUses   *uint64 `json:"maxUses"`
	Suspended bool    `json:"suspended"`
}

type serviceError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type machineRequest struct {
	Data machineData `json:"data"`
}

type machineData struct {
	Type          string               `json:"type"`
	Attributes    machineAttributes    `json:"attributes"`
	Relationships machineRelationships `json:"relationships"`
}

type machineAttributes struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Hostname    string `json:"hostname"`
	Cores       int    `json:"cores"`
}

type machineRelationships struct {
	License machineLicenseRef `json:"license"`
}

type machineLicenseRef struct {
	Data machineLicenseID `json:"data"`
}

type machineLicenseID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ValidateKey checks key against the service, scoped to this machine's
// fingerprint. When the service reports the machine is not yet activated,
// the machine is activated against the license and validation retried once.
func (c *Client) ValidateKey(ctx context.Context, key string) (*Validation, error) {
	return c.validateKey(ctx, key, false)
}

func (c *Client) validateKey(ctx context.Context, key string, retried bool) (*Validation, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/licenses/actions/validate-key", c.baseURL, c.accountID)
	body := validateRequest{
		Meta: validateMeta{
			Key:   key,
			Scope: validateScope{Fingerprint: Fingerprint()},
		},
	}

	resp, err := c.postJSON(ctx, url, "", body)
	if err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		var parts []string
		for _, e := range resp.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Title, e.Detail))
		}
		return nil, fmt.Errorf("license validation failed: %s", strings.Join(parts, ", "))
	}
	if resp.Meta == nil {
		return nil, fmt.Errorf("license validation failed: no validation meta in response")
	}

	v := &Validation{
		Valid:       resp.Meta.Valid,
		LicenseType: "professional",
	}

	if resp.Meta.Valid {
		if resp.Data != nil {
			if resp.Data.Attributes.Suspended {
				v.Valid = false
			}
			if exp := resp.Data.Attributes.Expiry; exp != "" {
				if t, err := time.Parse(time.RFC3339, exp); err == nil {
					utc := t.UTC()
					v.ExpiresAt = &utc
				}
			}
			v.UsageCount = resp.Data.Attributes.Uses
			v.UsageLimit = resp.Data.Attributes.MaxUses
			v.PolicyName = resp.Data.Attributes.Name
		}
		return v, nil
	}

	// A NO_MACHINE response means the license is fine but this machine is
	// not registered yet. Activate and retry once.
	if resp.Meta.Code == "NO_MACHINE" && !retried && resp.Data != nil {
		if err := c.activateMachine(ctx, key, resp.Data.ID); err != nil {
			return nil, fmt.Errorf("activate machine: %w", err)
		}
		return c.validateKey(ctx, key, true)
	}

	return v, nil
}

// activateMachine registers this machine's fingerprint with the license.
func (c *Client) activateMachine(ctx context.Context, key, licenseID string) error {
	hostname, _ := os.Hostname()
	url := fmt.Sprintf("%s/v1/accounts/%s/machines", c.baseURL, c.accountID)
	body := machineRequest{
		Data: machineData{
			Type: "machines",
			Attributes: machineAttributes{
				Fingerprint: Fingerprint(),
				Name:        "mnemo - " + hostname,
				Platform:    runtime.GOOS,
				Hostname:    hostname,
				Cores:       runtime.NumCPU(),
			},
			Relationships: machineRelationships{
				License: machineLicenseRef{
					Data: machineLicenseID{Type: "licenses", ID: licenseID},
				},
			},
		},
	}

	resp, err := c.postJSON(ctx, url, "License "+key, body)
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("machine activation failed: %s: %s", resp.Errors[0].Title, resp.Errors[0].Detail)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, url, authorization string, body any) (*serviceResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set("Accept", "application/vnd.api+json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call licensing service: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var resp serviceResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse response (%s): %w", httpResp.Status, err)
	}
	return &resp, nil
}

// Check resolves the effective validation: a fresh cached record is trusted
// as-is; otherwise the key (given, or the cached one) is validated online
// and the cache refreshed on success.
func Check(ctx context.Context, c *Client, cache *Cache, key string) (*Validation, error) {
	cached, err := cache.Load()
	if err != nil {
		return nil, err
	}
	if cached != nil && (key == "" || key == cached.Key) && cached.Fresh() && cached.Validation != nil {
		return cached.Validation, nil
	}

	if key == "" {
		if cached == nil {
			return nil, fmt.Errorf("no license key provided and no cached license found")
		}
		key = cached.Key
	}

	v, err := c.ValidateKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if v.Valid {
		if err := cache.Save(key, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}
