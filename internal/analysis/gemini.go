package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout  = 60 * time.Second
	DefaultLanguage = "en"

	// maxResponseBytes caps how much of an API response is read.
	maxResponseBytes = 4 << 20
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	Timeout     time.Duration
	SampleRows  int
	Temperature float64
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLimiter bounds concurrent Analyze calls.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a Client. A Client without an API key is valid but every
// Analyze call fails with ErrNotConfigured.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = DefaultSampleRows
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// LimiterStatus reports the concurrency limiter state, if one is attached.
func (c *Client) LimiterStatus() (LimiterStatus, bool) {
	if c.limiter == nil {
		return LimiterStatus{}, false
	}
	return c.limiter.Status(), true
}

// Analyze asks the model req.Query about a sample of req.CSV.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = DefaultLanguage
	}

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer c.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	sample := Sample(req.CSV, c.cfg.SampleRows)
	prompt := BuildPrompt(sample, query, lang)

	start := time.Now()
	slog.Info("analysis requested",
		"model", c.cfg.Model,
		"language", lang,
		"query", truncate(query, 80),
		"sample_bytes", len(sample),
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		slog.Warn("analysis failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	res, err := parseResult(text)
	if err != nil {
		return nil, err
	}

	slog.Debug("analysis completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"visualization", res.Visualization != nil,
	)
	return res, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64        `json:"temperature"`
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// generate sends prompt to generateContent and returns the first candidate's
// text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      c.cfg.Temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.Endpoint, c.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var gr generateResponse
	decodeErr := json.Unmarshal(data, &gr)

	if resp.StatusCode != http.StatusOK {
		msg := truncate(strings.TrimSpace(string(data)), 200)
		if decodeErr == nil && gr.Error != nil && gr.Error.Message != "" {
			msg = gr.Error.Message
		}
		return "", classify(&APIError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if gr.Error != nil {
		return "", classify(&APIError{StatusCode: gr.Error.Code, Message: gr.Error.Message})
	}

	if len(gr.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
