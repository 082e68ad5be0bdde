package deck

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/metrics"
	"astrodeck/internal/enrich"
	"astrodeck/internal/nasa"
)

// ErrEmptyTopic rejects generation requests with a blank topic.
var ErrEmptyTopic = errors.New("topic must not be empty")

// ImageSource supplies the two NASA upstreams feeding a deck.
type ImageSource interface {
	Apod(ctx context.Context, date time.Time) (*nasa.Apod, error)
	SearchImages(ctx context.Context, query, mediaType string, yearStart, yearEnd int) (*nasa.ImageSearch, error)
}

// Request carries the user input for one deck. Locale is accepted for
// forward compatibility; slide templates are English-only for now.
type Request struct {
	Topic      string `json:"topic"`
	GradeLevel string `json:"gradeLevel,omitempty"`
	Locale     string `json:"locale,omitempty"`
}

// Generator assembles lesson decks. Upstream failures never fail a
// request: the image source degrades to empty payloads and enrichment
// degrades to template-only slides.
type Generator struct {
	images   ImageSource
	enricher enrich.Provider
	engine   Engine
	log      logger.Logger

	now func() time.Time
}

func NewGenerator(images ImageSource, enricher enrich.Provider, log logger.Logger) *Generator {
	return &Generator{
		images:   images,
		enricher: enricher,
		log:      log,
		now:      time.Now,
	}
}

// Generate builds a five-slide deck for the request's topic. The image
// search and the picture-of-the-day fetch run concurrently; enrichment
// follows because it needs the APOD text.
func (g *Generator) Generate(ctx context.Context, req Request) (*LessonDeck, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	start := g.now()

	var (
		apod   *nasa.Apod
		images *nasa.ImageSearch
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		images, err = g.images.SearchImages(groupCtx, topic, "image", 0, 0)
		return err
	})
	group.Go(func() error {
		var err error
		apod, err = g.images.Apod(groupCtx, g.now())
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	content, err := g.enricher.Enrich(ctx, apod, req.GradeLevel)
	if err != nil {
		g.log.Warn("enrichment rejected, continuing without it", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		content = nil
	}

	d := g.buildDeck(topic, req.GradeLevel, images, apod, content)

	enriched := d.Enrichment != nil
	metrics.DecksGenerated.WithLabelValues(strconv.FormatBool(enriched)).Inc()
	metrics.DeckGenerationDuration.Observe(g.now().Sub(start).Seconds())
	g.log.Info("deck generated", map[string]interface{}{
		"deck_id":  d.ID,
		"topic":    topic,
		"enriched": enriched,
	})
	return d, nil
}

func (g *Generator) buildDeck(topic, gradeLevel string, images *nasa.ImageSearch, apod *nasa.Apod, content *enrich.Content) *LessonDeck {
	items := extractItems(images)

	var keyItem, explanationItem, furtherItem *nasa.Item
	if len(items) > 0 {
		keyItem = items[0]
		explanationItem = items[0]
		furtherItem = items[0]
	}
	if len(items) > 1 {
		explanationItem = items[1]
		furtherItem = items[len(items)-1]
	}
	if len(items) > 2 {
		furtherItem = items[2]
	}

	key := g.engine.KeyVisual(keyItem)
	explanation := g.engine.Explanation(topic, apod, explanationItem)
	why := g.engine.WhyItMatters(topic)
	question := g.engine.QuestionForClass(topic, gradeLevel)
	further := g.engine.FurtherReading(topic, furtherItem)

	applyEnrichment(content, key, explanation, why, question, further, gradeLevel)

	d := NewLessonDeck(topic, g.now().UTC())
	d.Slides = append(d.Slides, key, explanation, why, question, further)
	if content.Meaningful() {
		d.Enrichment = content
	}
	return d
}

func extractItems(images *nasa.ImageSearch) []*nasa.Item {
	if images == nil {
		return nil
	}
	items := make([]*nasa.Item, 0, len(images.Collection.Items))
	for i := range images.Collection.Items {
		items = append(items, &images.Collection.Items[i])
	}
	return items
}

// applyEnrichment overlays AI content onto the template slides. Each field
// replaces its slide's text only when present; the fun fact is appended to
// the further-reading slide idempotently.
func applyEnrichment(content *enrich.Content, key, explanation, why, question, further *Slide, gradeLevel string) {
	if content == nil {
		return
	}
	if !isBlank(content.Hook) {
		key.Text = content.Hook
	}
	if !isBlank(content.Attribution) {
		key.Attribution = content.Attribution
	}
	if !isBlank(content.SimpleExplanation) {
		explanation.Text = content.SimpleExplanation
		if !isBlank(content.Attribution) {
			explanation.Attribution = content.Attribution
		}
	}
	if !isBlank(content.WhyItMatters) {
		why.Text = content.WhyItMatters
	}
	if !isBlank(content.ClassQuestion) {
		enriched := strings.TrimSpace(content.ClassQuestion)
		grade := strings.TrimSpace(gradeLevel)
		if grade != "" && !strings.Contains(strings.ToLower(enriched), "grade") {
			enriched += " (Align difficulty for grade " + grade + ")"
		}
		question.Text = enriched
	}
	if !isBlank(content.FunFact) {
		base := strings.TrimSpace(further.Text)
		funFact := "Fun fact: " + content.FunFact
		switch {
		case base == "":
			further.Text = funFact
		case !strings.Contains(base, funFact):
			further.Text = base + "\n\n" + funFact
		}
	}
}
