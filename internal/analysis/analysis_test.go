package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventory = "ID,Name,Stock\n1,Milk,10\n2,Bread,5\n"

// geminiReply wraps text the way generateContent does.
func geminiReply(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	return NewClient(Config{APIKey: "test-key", Endpoint: srv.URL, Timeout: 5 * time.Second}, opts...)
}

func TestAnalyze_Success(t *testing.T) {
	var got generateRequest
	var path, key string
	answer := `{"explanation":"Bread is lowest.","visualization":{"type":"bar","title":"Stock","data":"[{\"name\":\"Milk\",\"stock\":10},{\"name\":\"Bread\",\"stock\":5}]","columns":[{"key":"name","label":"Name"},{"key":"stock","label":"Stock"}]}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write(geminiReply(t, answer))
	})

	res, err := c.Analyze(context.Background(), Request{CSV: inventory, Query: "Which item has the least stock?", Language: "fr"})
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", path)
	assert.Equal(t, "test-key", key)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	require.Len(t, got.Contents, 1)
	prompt := got.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, `"fr"`)
	assert.Contains(t, prompt, "ID,Name,Stock\n1,Milk,10\n2,Bread,5")
	assert.Contains(t, prompt, "Which item has the least stock?")

	assert.Equal(t, "Bread is lowest.", res.Explanation)
	require.NotNil(t, res.Visualization)
	assert.Equal(t, VisualBar, res.Visualization.Type)
	require.Len(t, res.Visualization.Data, 2)
	assert.Equal(t, "Bread", res.Visualization.Data[1]["name"])
	assert.Equal(t, 5.0, res.Visualization.Data[1]["stock"])
	assert.Equal(t, []Column{{"name", "Name"}, {"stock", "Stock"}}, res.Visualization.Columns)
}

func TestAnalyze_DefaultsLanguage(t *testing.T) {
	var prompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		_, _ = w.Write(geminiReply(t, `{"explanation":"hi","visualization":null}`))
	})

	res, err := c.Analyze(context.Background(), Request{CSV: inventory, Query: "hello"})
	require.NoError(t, err)
	assert.Nil(t, res.Visualization)
	assert.Contains(t, prompt, `"en"`)
}

func TestAnalyze_Validation(t *testing.T) {
	unconfigured := NewClient(Config{})
	_, err := unconfigured.Analyze(context.Background(), Request{Query: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called for a blank query")
	})
	_, err = c.Analyze(context.Background(), Request{CSV: inventory, Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestAnalyze_AuthenticationErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		auth   bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"unauthorized"}}`, true},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"nope"}}`, true},
		{"bad key reported as 400", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key."}}`, true},
		{"permission denied text", http.StatusBadRequest, `{"error":{"code":400,"message":"Permission denied on resource"}}`, true},
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"internal"}}`, false},
		{"non-json error", http.StatusBadGateway, `upstream down`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Analyze(context.Background(), Request{CSV: inventory, Query: "q"})
			require.Error(t, err)
			assert.Equal(t, tt.auth, errors.Is(err, ErrAuthentication), "err = %v", err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestAnalyze_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})
	_, err := c.Analyze(context.Background(), Request{CSV: inventory, Query: "q"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Analyze(ctx, Request{CSV: inventory, Query: "q"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseResult(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		res, err := parseResult("```json\n{\"explanation\":\"ok\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, "ok", res.Explanation)
		assert.Nil(t, res.Visualization)
	})

	t.Run("undecodable data drops visualization", func(t *testing.T) {
		res, err := parseResult(`{"explanation":"ok","visualization":{"type":"pie","title":"t","data":"not json","columns":[]}}`)
		require.NoError(t, err)
		assert.Equal(t, "ok", res.Explanation)
		assert.Nil(t, res.Visualization)
	})

	t.Run("array data accepted", func(t *testing.T) {
		res, err := parseResult(`{"explanation":"ok","visualization":{"type":"table","title":"t","data":[{"a":1}],"columns":[{"key":"a","label":"A"}]}}`)
		require.NoError(t, err)
		require.NotNil(t, res.Visualization)
		assert.Equal(t, 1.0, res.Visualization.Data[0]["a"])
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := parseResult("Sorry, I can't help with that.")
		assert.Error(t, err)
	})
}

func TestSample(t *testing.T) {
	var b strings.Builder
	b.WriteString("A,B\r\n")
	for i := range 60 {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("x", i%3+1))
		b.WriteString(",1\r\n")
	}

	s := Sample(b.String(), 50)
	lines := strings.Split(s, "\n")
	assert.Len(t, lines, 51)
	assert.Equal(t, "A,B", lines[0])
	for _, l := range lines {
		assert.NotEmpty(t, strings.TrimSpace(l))
		assert.False(t, strings.HasSuffix(l, "\r"))
	}

	assert.Equal(t, "A,B\n1,2", Sample("A,B\n1,2", 0))
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(1, 30*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, LimiterStatus{Active: 1, Available: 0, MaxConcurrent: 1}, l.Status())

	assert.ErrorIs(t, l.Acquire(ctx), ErrTooManyAnalyses)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, l.Acquire(cancelled), context.Canceled)

	l.Release()
	assert.Equal(t, LimiterStatus{Active: 0, Available: 1, MaxConcurrent: 1}, l.Status())
}

func TestLimiter_BoundsConcurrentAnalyses(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		_, _ = w.Write(geminiReply(t, `{"explanation":"ok"}`))
	}, WithLimiter(NewLimiter(2, 5*time.Second)))

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Analyze(context.Background(), Request{CSV: inventory, Query: "q"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
}
