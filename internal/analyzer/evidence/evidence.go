// Package evidence looks up external cases similar to the project's risk
// topics. The lookup is disabled by default and always best-effort: any
// transport or decoding failure degrades to an empty result so an analysis
// never fails because of it.
package evidence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"vera-api/internal/common/config"
	"vera-api/internal/common/httpclient"
	"vera-api/internal/common/logger"
)

// Fetcher queries the configured evidence endpoint for reference cases.
type Fetcher struct {
	client  *httpclient.Client
	baseURL string
	logger  logger.Logger
}

// New builds a Fetcher from config. Returns nil when no base URL is set, so
// callers can treat a nil Fetcher as "feature off".
func New(cfg config.EvidenceConfig, log logger.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		return nil
	}
	return &Fetcher{
		client:  httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		baseURL: cfg.BaseURL,
		logger:  log,
	}
}

type lookupResponse struct {
	Evidencias []string `json:"evidencias"`
}

// Lookup fetches reference bullets for the given risk topics. Failures are
// logged and swallowed.
func (f *Fetcher) Lookup(ctx context.Context, topics []string) []string {
	if f == nil || len(topics) == 0 {
		return nil
	}

	q := url.Values{}
	q.Set("topicos", strings.Join(topics, ","))
	endpoint := strings.TrimRight(f.baseURL, "/") + "/evidencias?" + q.Encode()

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		f.logger.Warn("evidence request build failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	resp, err := f.client.DoWithContext(ctx, req)
	if err != nil {
		f.logger.Warn("evidence lookup failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("evidence lookup returned non-200", map[string]interface{}{"status": resp.StatusCode})
		return nil
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		f.logger.Warn("evidence response decode failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return out.Evidencias
}
