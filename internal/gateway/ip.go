package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// FallbackIP is stamped on attendance records when the lookup fails.
const FallbackIP = "0.0.0.0"

const ipLookupTimeout = 3 * time.Second

// IPLookup resolves the caller's public IP through an external service.
// Best-effort only: attendance stamping must not block on it.
type IPLookup struct {
	endpoint   string
	httpClient *http.Client
}

func NewIPLookup(endpoint string) *IPLookup {
	return &IPLookup{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: ipLookupTimeout},
	}
}

// Lookup returns the public IP, or FallbackIP on any failure.
func (l *IPLookup) Lookup(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return FallbackIP
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return FallbackIP
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || resp.StatusCode != http.StatusOK {
		return FallbackIP
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.IP == "" {
		return FallbackIP
	}
	return body.IP
}
