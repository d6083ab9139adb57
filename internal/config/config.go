package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved runtime configuration for the client.
type Config struct {
	APIBaseURL     string
	WSBaseURL      string
	RequestTimeout time.Duration
	GoogleMapsKey  string
	LoginRoute     string
}

// remoteConfig is the shape of the backend /config/ response.
type remoteConfig struct {
	Keys struct {
		GoogleMaps string `json:"google_maps"`
	} `json:"keys"`
}

// localConfig is the shape of the local fallback file (config.local.yaml).
type localConfig struct {
	Keys struct {
		GoogleMaps string `yaml:"google_maps"`
	} `yaml:"keys"`
}

// Provider resolves configuration once per process: deploy-injected environment
// first, then the backend /config/ endpoint, then a local fallback file. Every
// failure degrades silently to defaults so startup is never blocked.
type Provider struct {
	httpClient   *http.Client
	log          zerolog.Logger
	fallbackPath string

	mu     sync.Mutex
	loaded bool
	cfg    Config
}

// ProviderOption defines a function type to modify the Provider instance.
type ProviderOption func(*Provider)

// WithHTTPClient sets the HTTP client used for the remote config fetch.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithFallbackPath sets the path of the local fallback config file.
func WithFallbackPath(path string) ProviderOption {
	return func(p *Provider) {
		p.fallbackPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.log = l
	}
}

// NewProvider creates a configuration provider with defaults applied.
func NewProvider(options ...ProviderOption) *Provider {
	p := &Provider{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		log:          zerolog.Nop(),
		fallbackPath: defaultFallbackPath,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Load resolves the configuration. Repeat calls return the already-resolved
// value; resolution runs at most once per Provider.
func (p *Provider) Load(ctx context.Context) Config {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return p.cfg
	}

	cfg := Config{
		APIBaseURL:     GetEnv(apiBaseURLVar, defaultAPIBaseURL),
		RequestTimeout: defaultRequestTimeout,
		LoginRoute:     GetEnv(loginRouteVar, defaultLoginRoute),
	}
	cfg.WSBaseURL = GetEnv(wsBaseURLVar, deriveWSBase(cfg.APIBaseURL))

	if key, ok := p.fetchRemoteKey(ctx, cfg.APIBaseURL); ok {
		cfg.GoogleMapsKey = key
	} else if key, ok := p.readFallbackKey(); ok {
		cfg.GoogleMapsKey = key
	}

	p.cfg = cfg
	p.loaded = true
	return p.cfg
}

// fetchRemoteKey fetches runtime keys from the backend config endpoint, which
// lives one level above the versioned API base.
func (p *Provider) fetchRemoteKey(ctx context.Context, baseURL string) (string, bool) {
	configURL := strings.TrimSuffix(baseURL, "/v1") + "/config/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		p.log.Warn().Err(err).Msg("config request build failed, using defaults")
		return "", false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Msg("backend config fetch failed, using defaults")
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Warn().Int("status", resp.StatusCode).Msg("backend config fetch returned non-OK")
		return "", false
	}

	var remote remoteConfig
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		p.log.Warn().Err(err).Msg("backend config decode failed")
		return "", false
	}
	if remote.Keys.GoogleMaps == "" {
		return "", false
	}
	return remote.Keys.GoogleMaps, true
}

func (p *Provider) readFallbackKey() (string, bool) {
	data, err := os.ReadFile(p.fallbackPath)
	if err != nil {
		return "", false
	}
	var local localConfig
	if err := yaml.Unmarshal(data, &local); err != nil {
		p.log.Warn().Err(err).Str("path", p.fallbackPath).Msg("local config parse failed")
		return "", false
	}
	if local.Keys.GoogleMaps == "" {
		return "", false
	}
	return local.Keys.GoogleMaps, true
}

// deriveWSBase maps an HTTP API base URL to its WebSocket origin,
// e.g. "https://host/api/v1" -> "wss://host".
func deriveWSBase(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil || u.Host == "" {
		return apiBase
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return scheme + "://" + u.Host
}
