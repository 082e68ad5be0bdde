package deck

import (
	"regexp"
	"strings"

	"astrodeck/internal/nasa"
)

const (
	maxVisualTextLen      = 420
	maxExplanationTextLen = 600
)

var simpleGradePattern = regexp.MustCompile(`^\d+(-\d+)?$`)

// Engine produces the baseline slide content used when enrichment is
// unavailable. Every method tolerates nil inputs and falls back to neutral
// defaults so a deck can always be assembled.
type Engine struct{}

func (Engine) KeyVisual(item *nasa.Item) *Slide {
	return &Slide{
		Type:        SlideKeyVisual,
		Title:       firstTitle(item),
		Text:        shorten(firstDescription(item, "NASA imagery for the topic."), maxVisualTextLen),
		ImageURL:    bestImageHref(item),
		Attribution: firstCenter(item),
	}
}

func (Engine) Explanation(topic string, apod *nasa.Apod, contextItem *nasa.Item) *Slide {
	var apodText, apodURL string
	if apod != nil {
		apodText = apod.Explanation
		apodURL = apod.URL
	}

	text := shorten(apodText, maxExplanationTextLen)
	if isBlank(apodText) {
		text = shorten(firstDescription(contextItem, "A concise overview focusing on key physical concepts and observational evidence."), maxExplanationTextLen)
	}

	img := apodURL
	if isBlank(img) {
		img = bestImageHref(contextItem)
	}

	return &Slide{
		Type:        SlideExplanation,
		Title:       "What is " + topic + "?",
		Text:        text,
		ImageURL:    img,
		Attribution: "APOD / NASA",
	}
}

func (Engine) WhyItMatters(topic string) *Slide {
	return &Slide{
		Type:        SlideWhyItMatters,
		Title:       "Why it matters",
		Text:        "How " + topic + " connects to missions, instruments, and daily tech (navigation, communications, climate and space weather).",
		Attribution: "NASA",
	}
}

func (Engine) QuestionForClass(topic, gradeLevel string) *Slide {
	text := "If you could observe " + topic + " for one night, what instrument would you pick and why?"
	if !isBlank(gradeLevel) && simpleGradePattern.MatchString(gradeLevel) {
		text += " (Align difficulty for grade " + gradeLevel + ")"
	}
	return &Slide{
		Type:  SlideQuestion,
		Title: "Question for class",
		Text:  text,
	}
}

func (Engine) FurtherReading(topic string, item *nasa.Item) *Slide {
	page := detailsPage(item)
	if page == "" {
		page = "images.nasa.gov search."
	}
	return &Slide{
		Type:        SlideFurtherReading,
		Title:       "Further reading",
		Text:        "Explore more NASA assets on " + topic + ". Start with the image collection: " + page,
		ImageURL:    bestImageHref(item),
		Attribution: "NASA Image & Video Library",
	}
}

func firstData(item *nasa.Item) *nasa.Data {
	if item == nil || len(item.Data) == 0 {
		return nil
	}
	return &item.Data[0]
}

func firstTitle(item *nasa.Item) string {
	if d := firstData(item); d != nil && !isBlank(d.Title) {
		return d.Title
	}
	return "Key Visual"
}

func firstDescription(item *nasa.Item, def string) string {
	if d := firstData(item); d != nil && !isBlank(d.Description) {
		return d.Description
	}
	return def
}

func firstCenter(item *nasa.Item) string {
	if d := firstData(item); d != nil && !isBlank(d.Center) {
		return d.Center
	}
	return "NASA"
}

// bestImageHref picks the most useful asset link: a link rendered as an
// image, then any link to an image file, then any link at all.
func bestImageHref(item *nasa.Item) string {
	if item == nil {
		return ""
	}
	for _, l := range item.Links {
		if strings.EqualFold(l.Render, "image") && !isBlank(l.Href) {
			return l.Href
		}
	}
	for _, l := range item.Links {
		href := strings.ToLower(l.Href)
		if strings.HasSuffix(href, ".jpg") || strings.HasSuffix(href, ".jpeg") || strings.HasSuffix(href, ".png") {
			return l.Href
		}
	}
	for _, l := range item.Links {
		if !isBlank(l.Href) {
			return l.Href
		}
	}
	return ""
}

func detailsPage(item *nasa.Item) string {
	if d := firstData(item); d != nil && !isBlank(d.NasaID) {
		return "https://images.nasa.gov/details-" + d.NasaID
	}
	if item != nil && !isBlank(item.Href) {
		return item.Href
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
