package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/httpclient"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/resilience"
	"astrodeck/internal/nasa"
)

// CloudflareAI generates enrichment through the Workers AI REST API.
type CloudflareAI struct {
	cfg  config.CloudflareConfig
	http *httpclient.Client
	log  logger.Logger
}

func NewCloudflareAI(cfg config.CloudflareConfig, client *httpclient.Client, log logger.Logger) *CloudflareAI {
	return &CloudflareAI{
		cfg:  cfg,
		http: client,
		log:  log,
	}
}

type aiRequest struct {
	Prompt string `json:"prompt"`
}

type aiEnvelope struct {
	Result *aiResult `json:"result"`
}

type aiResult struct {
	Response   string   `json:"response"`
	OutputText []string `json:"output_text"`
}

func (r *aiResult) text() string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.Response) != "" {
		return r.Response
	}
	return strings.Join(r.OutputText, "")
}

// Enrich asks the model for lesson content. It returns (nil, nil) when the
// provider is disabled, misconfigured, or the upstream is unreachable after
// retries; only a schema violation of a decoded response is an error.
func (c *CloudflareAI) Enrich(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*Content, error) {
	if !c.cfg.Enabled || !c.cfg.Configured() || apod == nil {
		return nil, nil
	}
	if strings.TrimSpace(apod.Title) == "" || strings.TrimSpace(apod.Explanation) == "" {
		return nil, nil
	}

	body, err := json.Marshal(aiRequest{Prompt: c.buildPrompt(apod, gradeLevel)})
	if err != nil {
		return nil, fmt.Errorf("cloudflare ai: marshal request: %w", err)
	}

	raw := resilience.DoWithFallback(ctx, c.log, "cloudflare_ai", resilience.PolicyFromConfig(c.cfg.Retry), func(ctx context.Context) (string, error) {
		return c.call(ctx, body)
	}, "")

	text := stripFences(raw)
	if text == "" {
		return nil, nil
	}

	var content Content
	if err := json.Unmarshal([]byte(text), &content); err != nil {
		c.log.Warn("cloudflare ai returned non-JSON content", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	if err := ValidateContent([]byte(text)); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr
		}
		return nil, err
	}

	if content.Meta == nil {
		content.Meta = &Meta{Model: c.cfg.ModelID()}
	} else if strings.TrimSpace(content.Meta.Model) == "" {
		content.Meta.Model = c.cfg.ModelID()
	}
	return &content, nil
}

func (c *CloudflareAI) call(ctx context.Context, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/client/v4/accounts/%s/ai/run/%s/%s/%s",
		c.cfg.BaseURL, c.cfg.AccountID, c.cfg.Provider, c.cfg.Vendor, c.cfg.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cloudflare ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudflare ai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudflare ai: unexpected status %d", resp.StatusCode)
	}

	var envelope aiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("cloudflare ai: decode response: %w", err)
	}
	return envelope.Result.text(), nil
}

func (c *CloudflareAI) buildPrompt(apod *nasa.Apod, gradeLevel string) string {
	maxVocab := c.cfg.MaxVocabulary
	if maxVocab < 0 {
		maxVocab = 0
	}
	grade := ParseGrade(gradeLevel)

	system := "You are an assistant that creates concise lesson enrichment JSON for educators. " +
		"Always respond with a single JSON object. Keys: hook, simple_explanation, " +
		"why_it_matters, class_question, vocabulary (array of {\"term\", \"definition\"}), fun_fact, " +
		"attribution, and _meta. The _meta object must include a \"model\" field. " +
		"When a field is not applicable, set it to an empty string or an empty array. " +
		"Never wrap the JSON in markdown fences or add commentary. " +
		fmt.Sprintf("Keep vocabulary entries to at most %d items.", maxVocab)

	user := "Create enrichment material for a classroom lesson about NASA's Astronomy Picture of the Day." +
		fmt.Sprintf("Focus on keeping explanations accessible for grade %d students.", grade) +
		"Title: " + apod.Title + "\n" +
		fmt.Sprintf("Provide up to %d vocabulary items.", maxVocab) +
		"Make the class_question actionable for classroom discussion." +
		"Include a fun_fact when possible and cite attribution if a source is obvious." +
		"Return only the JSON object."

	return system + user
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, that models add despite instructions.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		firstLineBreak := strings.IndexByte(trimmed, '\n')
		lastFence := strings.LastIndex(trimmed, "```")
		if firstLineBreak >= 0 && lastFence > firstLineBreak {
			trimmed = strings.TrimSpace(trimmed[firstLineBreak+1 : lastFence])
		}
	}
	return trimmed
}
