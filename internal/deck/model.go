// Package deck builds five-slide lesson decks for a topic by combining
// NASA imagery, the picture of the day, and optional AI enrichment.
package deck

import (
	"time"

	"github.com/google/uuid"

	"astrodeck/internal/enrich"
)

type SlideType string

const (
	SlideKeyVisual      SlideType = "KEY_VISUAL"
	SlideExplanation    SlideType = "EXPLANATION"
	SlideWhyItMatters   SlideType = "WHY_IT_MATTERS"
	SlideQuestion       SlideType = "QUESTION"
	SlideFurtherReading SlideType = "FURTHER_READING"
)

type Slide struct {
	Type        SlideType `json:"type"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Attribution string    `json:"attribution,omitempty"`
}

// LessonDeck is the generated artifact served to clients. Enrichment is
// attached only when it carries meaningful content.
type LessonDeck struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	CreatedAt  time.Time       `json:"createdAt"`
	Slides     []*Slide        `json:"slides"`
	Enrichment *enrich.Content `json:"enrichment,omitempty"`
}

func NewLessonDeck(topic string, createdAt time.Time) *LessonDeck {
	return &LessonDeck{
		ID:        "deck-" + uuid.NewString(),
		Topic:     topic,
		CreatedAt: createdAt,
		Slides:    make([]*Slide, 0, 5),
	}
}
