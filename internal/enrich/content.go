// Package enrich produces AI-generated lesson enrichment for a picture of
// the day. Two interchangeable providers exist: the Workers AI REST API and
// a self-hosted sidecar service. Both are optional; a deck is always built
// even when enrichment is unavailable.
package enrich

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"astrodeck/internal/nasa"
)

// Provider generates enrichment content for an APOD entry. A (nil, nil)
// return means enrichment was skipped or unavailable; only content that
// failed structural validation surfaces as an error.
type Provider interface {
	Enrich(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*Content, error)
}

// Content is the enrichment payload merged into a generated deck.
type Content struct {
	Hook              string      `json:"hook,omitempty"`
	SimpleExplanation string      `json:"simple_explanation,omitempty"`
	WhyItMatters      string      `json:"why_it_matters,omitempty"`
	ClassQuestion     string      `json:"class_question,omitempty"`
	Vocabulary        []VocabItem `json:"vocabulary,omitempty"`
	FunFact           string      `json:"fun_fact,omitempty"`
	Attribution       string      `json:"attribution,omitempty"`
	Meta              *Meta       `json:"_meta,omitempty"`
}

type VocabItem struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type Meta struct {
	Model string `json:"model,omitempty"`
}

// Meaningful reports whether the content carries anything worth attaching
// to a deck: at least one non-blank text field or a vocabulary entry.
func (c *Content) Meaningful() bool {
	if c == nil {
		return false
	}
	for _, s := range []string{
		c.Hook, c.SimpleExplanation, c.WhyItMatters,
		c.ClassQuestion, c.FunFact, c.Attribution,
	} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return len(c.Vocabulary) > 0
}

var firstNumber = regexp.MustCompile(`\d+`)

// ParseGrade extracts the first number from a free-form grade level such
// as "5" or "6-8", defaulting to 5.
func ParseGrade(gradeLevel string) int {
	match := firstNumber.FindString(gradeLevel)
	if match == "" {
		return 5
	}
	grade, err := strconv.Atoi(match)
	if err != nil {
		return 5
	}
	return grade
}
