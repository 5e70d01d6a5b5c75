package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IPResolver resolves the viewer's public IP before a badge download is
// audited. Lookups go to an external service and can fail; the caller
// decides what a failed lookup means (currently: skip the audit row).
type IPResolver interface {
	ResolvePublicIP(ctx context.Context) (string, error)
}

// HTTPResolver asks an external lookup service. It accepts either a JSON
// body of the form {"ip": "..."} or a bare-text IP.
type HTTPResolver struct {
	Client  *http.Client
	URL     string
	Timeout time.Duration
}

func NewHTTPResolver(client *http.Client, url string, timeout time.Duration) *HTTPResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPResolver{Client: client, URL: url, Timeout: timeout}
}

func (r *HTTPResolver) ResolvePublicIP(ctx context.Context) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", err
	}

	var parsed struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.IP != "" {
		return parsed.IP, nil
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", fmt.Errorf("ip lookup returned empty body")
	}
	return ip, nil
}
