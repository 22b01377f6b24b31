package classify

import (
	"html"
	"regexp"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/microcosm-cc/bluemonday"
	"gitlab.com/tozd/go/errors"
)

// Markup selects how a narrative is rendered for its display sink
type Markup string

const (
	// MarkupHTML renders emphasis as <span class="lens-..."> elements.
	MarkupHTML Markup = "html"
	// MarkupMarkdown renders bold emphasis as **text**.
	MarkupMarkdown Markup = "markdown"
	// MarkupPlain drops all emphasis.
	MarkupPlain Markup = "plain"
)

// ParseMarkup validates a markup name.
func ParseMarkup(s string) (Markup, error) {
	switch m := Markup(strings.ToLower(strings.TrimSpace(s))); m {
	case MarkupHTML, MarkupMarkdown, MarkupPlain:
		return m, nil
	case "":
		return MarkupHTML, nil
	default:
		return "", errors.Errorf("unknown markup %q (want html, markdown or plain)", s)
	}
}

// Segment is one piece of a narrative. Only Text is ever untrusted.
type Segment struct {
	Text   string `json:"text"`
	Accent Accent `json:"accent,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
}

func (s Segment) emphasized() bool {
	return s.Accent != AccentNone || s.Bold
}

// Narrative is the explanation for one selection, kept structured until it
// is rendered for a sink.
type Narrative []Segment

func plain(text string) Segment { return Segment{Text: text} }

func muted(text string) Segment { return Segment{Text: text, Accent: AccentMuted} }

func strong(text string, accent Accent) Segment {
	return Segment{Text: text, Accent: accent, Bold: true}
}

// the only markup allowed to reach an html sink
var narrativePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^lens-[a-z]+( lens-[a-z]+)*$`)).OnElements("span")
	return p
}()

// Render renders the narrative for the given markup. Segment text is always
// escaped for the target markup before it is embedded.
func (n Narrative) Render(markup Markup) string {
	switch markup {
	case MarkupMarkdown:
		return n.markdown()
	case MarkupPlain:
		return n.String()
	default:
		return n.html()
	}
}

// String renders the narrative without any emphasis.
func (n Narrative) String() string {
	var sb strings.Builder
	for _, seg := range n {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

func (n Narrative) html() string {
	var sb strings.Builder
	for _, seg := range n {
		if !seg.emphasized() {
			sb.WriteString(html.EscapeString(seg.Text))
			continue
		}
		classes := make([]string, 0, 2)
		if seg.Accent != AccentNone {
			classes = append(classes, "lens-"+string(seg.Accent))
		}
		if seg.Bold {
			classes = append(classes, "lens-bold")
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(strings.Join(classes, " "))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(seg.Text))
		sb.WriteString(`</span>`)
	}
	return narrativePolicy.Sanitize(sb.String())
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `&lt;`,
	`>`, `&gt;`,
)

func (n Narrative) markdown() string {
	var sb strings.Builder
	for _, seg := range n {
		text := markdownEscaper.Replace(seg.Text)
		if seg.Bold && strings.TrimSpace(text) != "" {
			sb.WriteString("**")
			sb.WriteString(text)
			sb.WriteString("**")
			continue
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// Truncate shortens text to limit visible characters (grapheme clusters) and
// appends ellipsis when anything was cut.
func Truncate(text string, limit int, ellipsis string) string {
	if limit <= 0 {
		return text
	}
	clusters, err := textseg.AllTokens([]byte(text), textseg.ScanGraphemeClusters)
	if err != nil || len(clusters) <= limit {
		return text
	}
	var sb strings.Builder
	for _, c := range clusters[:limit] {
		sb.Write(c)
	}
	sb.WriteString(ellipsis)
	return sb.String()
}
