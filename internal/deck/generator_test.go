package deck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrodeck/internal/common/logger"
	"astrodeck/internal/enrich"
	"astrodeck/internal/nasa"
)

type fakeImageSource struct {
	apod   *nasa.Apod
	images *nasa.ImageSearch
	err    error
}

func (f *fakeImageSource) Apod(ctx context.Context, date time.Time) (*nasa.Apod, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.apod == nil {
		return &nasa.Apod{}, nil
	}
	return f.apod, nil
}

func (f *fakeImageSource) SearchImages(ctx context.Context, query, mediaType string, yearStart, yearEnd int) (*nasa.ImageSearch, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.images == nil {
		return &nasa.ImageSearch{}, nil
	}
	return f.images, nil
}

type enricherFunc func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error)

func (f enricherFunc) Enrich(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
	return f(ctx, apod, gradeLevel)
}

var noEnrichment = enricherFunc(func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
	return nil, nil
})

func searchResult(items ...nasa.Item) *nasa.ImageSearch {
	return &nasa.ImageSearch{Collection: nasa.Collection{Items: items}}
}

func slideTypes(d *LessonDeck) []SlideType {
	types := make([]SlideType, 0, len(d.Slides))
	for _, s := range d.Slides {
		types = append(types, s.Type)
	}
	return types
}

func TestGenerator_RejectsBlankTopic(t *testing.T) {
	g := NewGenerator(&fakeImageSource{}, noEnrichment, logger.NewTestLogger(t))

	for _, topic := range []string{"", "   "} {
		_, err := g.Generate(context.Background(), Request{Topic: topic})
		assert.ErrorIs(t, err, ErrEmptyTopic)
	}
}

func TestGenerator_EmptyUpstreamsStillYieldFiveSlides(t *testing.T) {
	g := NewGenerator(&fakeImageSource{}, noEnrichment, logger.NewTestLogger(t))

	d, err := g.Generate(context.Background(), Request{Topic: " black holes "})
	require.NoError(t, err)

	assert.Equal(t, "black holes", d.Topic)
	assert.True(t, len(d.ID) > len("deck-"))
	assert.Equal(t, []SlideType{
		SlideKeyVisual, SlideExplanation, SlideWhyItMatters, SlideQuestion, SlideFurtherReading,
	}, slideTypes(d))
	assert.Nil(t, d.Enrichment)

	key := d.Slides[0]
	assert.Equal(t, "Key Visual", key.Title)
	assert.Equal(t, "NASA imagery for the topic.", key.Text)
}

func TestGenerator_AssignsImageItemsByPosition(t *testing.T) {
	items := searchResult(
		nasa.Item{Data: []nasa.Data{{Title: "First", NasaID: "id-1"}}, Links: []nasa.Link{{Href: "https://x/1.jpg", Render: "image"}}},
		nasa.Item{Data: []nasa.Data{{Title: "Second", Description: "Second description."}}, Links: []nasa.Link{{Href: "https://x/2.jpg", Render: "image"}}},
		nasa.Item{Data: []nasa.Data{{Title: "Third", NasaID: "id-3"}}},
	)
	g := NewGenerator(&fakeImageSource{images: items}, noEnrichment, logger.NewTestLogger(t))

	d, err := g.Generate(context.Background(), Request{Topic: "nebulae"})
	require.NoError(t, err)

	assert.Equal(t, "First", d.Slides[0].Title)
	assert.Equal(t, "https://x/1.jpg", d.Slides[0].ImageURL)
	assert.Equal(t, "Second description.", d.Slides[1].Text, "no APOD text, second item fills the explanation")
	assert.Contains(t, d.Slides[4].Text, "https://images.nasa.gov/details-id-3")
}

func TestGenerator_TwoItemsReuseLastForFurtherReading(t *testing.T) {
	items := searchResult(
		nasa.Item{Data: []nasa.Data{{Title: "First"}}},
		nasa.Item{Data: []nasa.Data{{Title: "Second", NasaID: "id-2"}}},
	)
	g := NewGenerator(&fakeImageSource{images: items}, noEnrichment, logger.NewTestLogger(t))

	d, err := g.Generate(context.Background(), Request{Topic: "nebulae"})
	require.NoError(t, err)
	assert.Contains(t, d.Slides[4].Text, "https://images.nasa.gov/details-id-2")
}

func TestGenerator_MergesEnrichment(t *testing.T) {
	content := &enrich.Content{
		Hook:              "A storm bigger than Earth!",
		SimpleExplanation: "A very old storm on Jupiter.",
		WhyItMatters:      "It teaches us about planetary weather.",
		ClassQuestion:     "What keeps the storm spinning?",
		FunFact:           "It was first observed centuries ago.",
		Attribution:       "NASA/JPL",
		Meta:              &enrich.Meta{Model: "workers-ai/meta/llama-3"},
	}
	g := NewGenerator(
		&fakeImageSource{apod: &nasa.Apod{Title: "Spot", Explanation: "Long text."}},
		enricherFunc(func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
			return content, nil
		}),
		logger.NewTestLogger(t),
	)

	d, err := g.Generate(context.Background(), Request{Topic: "jupiter", GradeLevel: "6"})
	require.NoError(t, err)

	require.NotNil(t, d.Enrichment)
	assert.Equal(t, "A storm bigger than Earth!", d.Slides[0].Text)
	assert.Equal(t, "NASA/JPL", d.Slides[0].Attribution)
	assert.Equal(t, "A very old storm on Jupiter.", d.Slides[1].Text)
	assert.Equal(t, "NASA/JPL", d.Slides[1].Attribution)
	assert.Equal(t, "It teaches us about planetary weather.", d.Slides[2].Text)
	assert.Equal(t, "What keeps the storm spinning? (Align difficulty for grade 6)", d.Slides[3].Text)
	assert.Contains(t, d.Slides[4].Text, "\n\nFun fact: It was first observed centuries ago.")
}

func TestGenerator_GradeSuffixSkippedWhenQuestionMentionsGrade(t *testing.T) {
	g := NewGenerator(
		&fakeImageSource{},
		enricherFunc(func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
			return &enrich.Content{ClassQuestion: "A Grade 6 question: why is the sky dark at night?"}, nil
		}),
		logger.NewTestLogger(t),
	)

	d, err := g.Generate(context.Background(), Request{Topic: "night sky", GradeLevel: "6"})
	require.NoError(t, err)
	assert.Equal(t, "A Grade 6 question: why is the sky dark at night?", d.Slides[3].Text)
}

func TestGenerator_EnrichmentErrorDegradesToTemplates(t *testing.T) {
	g := NewGenerator(
		&fakeImageSource{},
		enricherFunc(func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
			return nil, &enrich.SchemaError{Violations: []string{"hook: too long"}}
		}),
		logger.NewTestLogger(t),
	)

	d, err := g.Generate(context.Background(), Request{Topic: "comets"})
	require.NoError(t, err)
	assert.Nil(t, d.Enrichment)
	assert.Len(t, d.Slides, 5)
}

func TestGenerator_NonMeaningfulEnrichmentNotAttached(t *testing.T) {
	g := NewGenerator(
		&fakeImageSource{},
		enricherFunc(func(ctx context.Context, apod *nasa.Apod, gradeLevel string) (*enrich.Content, error) {
			return &enrich.Content{Meta: &enrich.Meta{Model: "m"}}, nil
		}),
		logger.NewTestLogger(t),
	)

	d, err := g.Generate(context.Background(), Request{Topic: "comets"})
	require.NoError(t, err)
	assert.Nil(t, d.Enrichment)
}

func TestGenerator_PropagatesUpstreamContextError(t *testing.T) {
	g := NewGenerator(&fakeImageSource{err: context.Canceled}, noEnrichment, logger.NewTestLogger(t))

	_, err := g.Generate(context.Background(), Request{Topic: "comets"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestApplyEnrichment_FunFactIdempotent(t *testing.T) {
	content := &enrich.Content{FunFact: "Saturn would float in water."}
	further := &Slide{Type: SlideFurtherReading, Text: "Explore more."}

	applyEnrichment(content, &Slide{}, &Slide{}, &Slide{}, &Slide{}, further, "")
	first := further.Text
	applyEnrichment(content, &Slide{}, &Slide{}, &Slide{}, &Slide{}, further, "")

	assert.Equal(t, first, further.Text)
	assert.Equal(t, "Explore more.\n\nFun fact: Saturn would float in water.", further.Text)
}

func TestApplyEnrichment_FunFactFillsEmptyText(t *testing.T) {
	further := &Slide{Type: SlideFurtherReading}
	applyEnrichment(&enrich.Content{FunFact: "A fact."}, &Slide{}, &Slide{}, &Slide{}, &Slide{}, further, "")
	assert.Equal(t, "Fun fact: A fact.", further.Text)
}

func TestNewLessonDeck(t *testing.T) {
	created := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	d := NewLessonDeck("saturn", created)
	assert.True(t, len(d.ID) > len("deck-"))
	assert.Equal(t, "saturn", d.Topic)
	assert.Equal(t, created, d.CreatedAt)
	assert.NotEqual(t, d.ID, NewLessonDeck("saturn", created).ID)
}
