package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/httpclient"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/resilience"
	"astrodeck/internal/nasa"
)

// Sidecar generates enrichment through a co-deployed enricher service that
// fronts a local model. It is strictly best-effort: any failure, including
// malformed responses, degrades to no enrichment.
type Sidecar struct {
	cfg  config.EnricherConfig
	http *httpclient.Client
	log  logger.Logger
}

func NewSidecar(cfg config.EnricherConfig, client *httpclient.Client, log logger.Logger) *Sidecar {
	return &Sidecar{
		cfg:  cfg,
		http: client,
		log:  log,
	}
}

type sidecarRequest struct {
	Title       string  `json:"title"`
	Explanation string  `json:"explanation"`
	Grade       int     `json:"grade"`
	MaxVocab    int     `json:"max_vocab"`
	Temperature float64 `json:"temperature"`
}

func (s *Sidecar) Enrich(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*Content, error) {
	if !s.cfg.Enabled || apod == nil {
		return nil, nil
	}
	if strings.TrimSpace(apod.Title) == "" || strings.TrimSpace(apod.Explanation) == "" {
		return nil, nil
	}

	maxVocab := s.cfg.MaxVocabulary
	if maxVocab < 0 {
		maxVocab = 0
	}
	body, err := json.Marshal(sidecarRequest{
		Title:       apod.Title,
		Explanation: apod.Explanation,
		Grade:       ParseGrade(gradeLevel),
		MaxVocab:    maxVocab,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("enricher: marshal request: %w", err)
	}

	content := resilience.DoWithFallback(ctx, s.log, "enricher", resilience.PolicyFromConfig(s.cfg.Retry), func(ctx context.Context) (*Content, error) {
		return s.call(ctx, body)
	}, (*Content)(nil))
	return content, nil
}

func (s *Sidecar) call(ctx context.Context, body []byte) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/enrich", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("enricher: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enricher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enricher: unexpected status %d", resp.StatusCode)
	}

	var content Content
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("enricher: decode response: %w", err)
	}
	return &content, nil
}
