package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/httpclient"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/nasa"
)

func cloudflareTestConfig(baseURL string) config.CloudflareConfig {
	return config.CloudflareConfig{
		BaseURL:       baseURL,
		AccountID:     "acc-123",
		Provider:      "workers-ai",
		Vendor:        "meta",
		Model:         "llama-3",
		APIToken:      "secret-token",
		Enabled:       true,
		MaxVocabulary: 3,
		Temperature:   0.6,
		Retry: config.RetryConfig{
			Timeout:    200 * time.Millisecond,
			MaxRetries: 1,
			BaseDelay:  time.Millisecond,
			MaxDelay:   4 * time.Millisecond,
		},
	}
}

func testApod() *nasa.Apod {
	return &nasa.Apod{
		Title:       "The Great Red Spot",
		Explanation: "Jupiter's long-lived storm.",
		MediaType:   "image",
	}
}

func envelopeWith(text string) string {
	raw, _ := json.Marshal(map[string]any{"result": map[string]any{"response": text}})
	return string(raw)
}

func newCloudflare(t *testing.T, cfg config.CloudflareConfig) *CloudflareAI {
	t.Helper()
	return NewCloudflareAI(cfg, httpclient.New(time.Second), logger.NewTestLogger(t))
}

func TestCloudflareAI_EnrichSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client/v4/accounts/acc-123/ai/run/workers-ai/meta/llama-3", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var req aiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Prompt, "The Great Red Spot")
		assert.Contains(t, req.Prompt, "grade 6")
		assert.Contains(t, req.Prompt, "at most 3 items")

		fmt.Fprint(w, envelopeWith(validContentJSON()))
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "6-8")
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, "A storm bigger than Earth!", content.Hook)
	assert.Equal(t, "workers-ai/meta/llama-3", content.Meta.Model)
}

func TestCloudflareAI_StripsMarkdownFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelopeWith("```json\n"+validContentJSON()+"\n```"))
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, "A storm bigger than Earth!", content.Hook)
}

func TestCloudflareAI_JoinsOutputTextSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := validContentJSON()
		raw, _ := json.Marshal(map[string]any{"result": map[string]any{
			"output_text": []string{doc[:40], doc[40:]},
		}})
		w.Write(raw)
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	require.NotNil(t, content)
}

func TestCloudflareAI_FillsMissingModelMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(validContentJSON()), &doc))
		doc["_meta"] = json.RawMessage(`{}`)
		raw, _ := json.Marshal(doc)
		fmt.Fprint(w, envelopeWith(string(raw)))
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, "workers-ai/meta/llama-3", content.Meta.Model)
}

func TestCloudflareAI_SkipsWhenDisabled(t *testing.T) {
	cfg := cloudflareTestConfig("http://unreachable.invalid")
	cfg.Enabled = false

	ai := newCloudflare(t, cfg)
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	assert.Nil(t, content)
}

func TestCloudflareAI_SkipsWhenUnconfigured(t *testing.T) {
	cfg := cloudflareTestConfig("http://unreachable.invalid")
	cfg.APIToken = ""

	ai := newCloudflare(t, cfg)
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	assert.Nil(t, content)
}

func TestCloudflareAI_SkipsBlankApod(t *testing.T) {
	ai := newCloudflare(t, cloudflareTestConfig("http://unreachable.invalid"))

	for _, apod := range []*nasa.Apod{
		nil,
		{Title: "", Explanation: "text"},
		{Title: "title", Explanation: "  "},
	} {
		content, err := ai.Enrich(context.Background(), apod, "")
		require.NoError(t, err)
		assert.Nil(t, content)
	}
}

func TestCloudflareAI_TransportFailureDegradesToNil(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	assert.Nil(t, content)
	assert.Equal(t, int32(2), calls.Load(), "one retry before giving up")
}

func TestCloudflareAI_SchemaViolationIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(validContentJSON()), &doc))
		delete(doc, "fun_fact")
		raw, _ := json.Marshal(doc)
		fmt.Fprint(w, envelopeWith(string(raw)))
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Nil(t, content)
}

func TestCloudflareAI_NonJSONResponseDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelopeWith("Sure! Here is the enrichment you asked for."))
	}))
	defer srv.Close()

	ai := newCloudflare(t, cloudflareTestConfig(srv.URL))
	content, err := ai.Enrich(context.Background(), testApod(), "")
	require.NoError(t, err)
	assert.Nil(t, content)
}
