package deck

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ExportFilename derives a download filename from a deck topic.
func ExportFilename(topic, extension string) string {
	return unsafeFilenameChars.ReplaceAllString(topic, "_") + "." + extension
}

// ToHTML renders a deck as a self-contained dark-themed page, one card per
// slide, suitable for download or printing.
func ToHTML(d *LessonDeck) string {
	var sb strings.Builder
	sb.WriteString("<!doctype html><html lang='en'><head><meta charset='utf-8'>")
	sb.WriteString("<meta name='viewport' content='width=device-width,initial-scale=1'>")
	sb.WriteString("<title>" + escape(d.Topic) + " — AstroDeck</title>")
	sb.WriteString("<style>")
	sb.WriteString("body{font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif;margin:24px;background:#0b0d12;color:#e6e6e6;}")
	sb.WriteString(".deck{max-width:1000px;margin:0 auto;}")
	sb.WriteString(".title{font-size:28px;font-weight:700;margin-bottom:4px;}")
	sb.WriteString(".subtitle{opacity:.8;margin-bottom:24px;}")
	sb.WriteString(".grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(280px,1fr));gap:16px;}")
	sb.WriteString(".card{background:#151a22;border:1px solid #222a35;border-radius:16px;padding:16px;box-shadow:0 6px 20px rgba(0,0,0,.35);}")
	sb.WriteString(".type{font-size:12px;letter-spacing:.12em;text-transform:uppercase;opacity:.7;margin-bottom:8px;}")
	sb.WriteString(".card h3{margin:6px 0 8px 0;font-size:18px;}")
	sb.WriteString(".card img{max-width:100%;border-radius:12px;display:block;margin:8px 0;}")
	sb.WriteString(".attr{font-size:12px;opacity:.7;margin-top:8px;}")
	sb.WriteString("</style></head><body><div class='deck'>")
	sb.WriteString("<div class='title'>" + escape(d.Topic) + "</div>")
	sb.WriteString("<div class='subtitle'>Generated " + d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z") + "</div>")
	sb.WriteString("<div class='grid'>")
	for _, s := range d.Slides {
		sb.WriteString("<div class='card'>")
		sb.WriteString("<div class='type'>" + escape(string(s.Type)) + "</div>")
		if s.Title != "" {
			sb.WriteString("<h3>" + escape(s.Title) + "</h3>")
		}
		if s.ImageURL != "" {
			sb.WriteString("<img src='" + escape(s.ImageURL) + "' alt=''>")
		}
		if s.Text != "" {
			sb.WriteString("<p>" + escape(s.Text) + "</p>")
		}
		if s.Attribution != "" {
			sb.WriteString("<div class='attr'>© " + escape(s.Attribution) + "</div>")
		}
		sb.WriteString("</div>")
	}
	sb.WriteString("</div></div></body></html>")
	return sb.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return htmlEscaper.Replace(s)
}
