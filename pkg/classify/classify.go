// Package classify explains a selected bracket: it works out the span the
// bracket encloses, looks at the token right before it and assigns one of the
// semantic categories below, together with a display record and a narrative.
//
//	 ( )   function call  ->  tuple      ->  precedence
//	 [ ]   indexing       ->  slice      ->  list
//	 { }   mapping        ->  set / format placeholder
//
// The first rule that matches within a bracket class wins.
package classify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/bracketlens/pkg/brackets"
)

// Options tune the display side of a classification. Decisions never depend
// on them.
type Options struct {
	TruncateLength       int    `json:"truncate_length" yaml:"truncate_length"`
	Ellipsis             string `json:"ellipsis" yaml:"ellipsis"`
	EmptyPlaceholder     string `json:"empty_placeholder" yaml:"empty_placeholder"`
	UnmatchedPlaceholder string `json:"unmatched_placeholder" yaml:"unmatched_placeholder"`
	AnonymousSubject     string `json:"anonymous_subject" yaml:"anonymous_subject"`
	Markup               Markup `json:"markup" yaml:"markup"`
}

const fallbackKey = "key"

// DefaultOptions returns the stock display settings.
func DefaultOptions() Options {
	return Options{
		TruncateLength:       18,
		Ellipsis:             "...",
		EmptyPlaceholder:     "(empty)",
		UnmatchedPlaceholder: "...",
		AnonymousSubject:     "anonymous object",
		Markup:               MarkupHTML,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TruncateLength <= 0 {
		o.TruncateLength = def.TruncateLength
	}
	if o.Ellipsis == "" {
		o.Ellipsis = def.Ellipsis
	}
	if o.EmptyPlaceholder == "" {
		o.EmptyPlaceholder = def.EmptyPlaceholder
	}
	if o.UnmatchedPlaceholder == "" {
		o.UnmatchedPlaceholder = def.UnmatchedPlaceholder
	}
	if o.AnonymousSubject == "" {
		o.AnonymousSubject = def.AnonymousSubject
	}
	if o.Markup == "" {
		o.Markup = def.Markup
	}
	return o
}

// Result is the display-ready record for one selected bracket.
type Result struct {
	Category    Category `json:"category" yaml:"category"`
	Title       string   `json:"title" yaml:"title"`
	Syntax      string   `json:"syntax" yaml:"syntax"`
	Description string   `json:"description" yaml:"description"`
	Metaphor    string   `json:"metaphor" yaml:"metaphor"`
	Accent      Accent   `json:"accent" yaml:"accent"`

	// Subject is the identifier right before the bracket, or the anonymous
	// placeholder
	Subject string `json:"subject" yaml:"subject"`
	// Inner is the display form of the enclosed text
	Inner string `json:"inner" yaml:"inner"`
	// RawInner is the full trimmed enclosed text every decision is made on
	RawInner   string `json:"raw_inner" yaml:"raw_inner"`
	ExampleKey string `json:"example_key,omitempty" yaml:"example_key,omitempty"`

	Selected  brackets.ID   `json:"selected" yaml:"selected"`
	Partner   brackets.ID   `json:"partner,omitempty" yaml:"partner,omitempty"`
	Depth     int           `json:"depth" yaml:"depth"`
	Highlight []brackets.ID `json:"highlight" yaml:"highlight"`

	// Narrative is Segments rendered with the classifier's markup
	Narrative string    `json:"narrative" yaml:"narrative"`
	Segments  Narrative `json:"segments" yaml:"-"`
}

// Matched reports whether the selected bracket had a partner.
func (r *Result) Matched() bool {
	return r.Partner != ""
}

// Classifier assigns categories with a fixed set of display options.
type Classifier struct {
	opts Options
}

// New returns a classifier; zero fields in opts fall back to DefaultOptions.
func New(opts Options) *Classifier {
	return &Classifier{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (c *Classifier) Options() Options {
	return c.opts
}

var defaultClassifier = New(DefaultOptions())

// Classify classifies the selected token with the default options.
func Classify(tokens brackets.Tokens, selected brackets.ID) (*Result, bool) {
	return defaultClassifier.Classify(tokens, selected)
}

// Classify explains the selected bracket. It returns false when the id is
// not in the sequence or names a content token.
func (c *Classifier) Classify(tokens brackets.Tokens, selected brackets.ID) (*Result, bool) {
	idx := tokens.IndexOf(selected)
	if idx < 0 || !tokens[idx].IsBracket() {
		return nil, false
	}
	tok := tokens[idx]

	var prev *brackets.Token
	if idx > 0 {
		prev = &tokens[idx-1]
	}

	raw, matched := tokens.InnerText(selected)
	inner := c.opts.UnmatchedPlaceholder
	if matched {
		inner = c.display(raw)
	}

	subject := c.opts.AnonymousSubject
	if prev != nil && prev.IsContent() {
		if name := trailingIdentifier(strings.TrimSpace(prev.Text)); name != "" {
			subject = name
		}
	}

	res := &Result{
		Accent:    AccentOf(tok.Shape()),
		Subject:   subject,
		Inner:     inner,
		RawInner:  raw,
		Selected:  tok.ID,
		Partner:   tok.Partner,
		Depth:     tok.Depth,
		Highlight: tokens.Highlight(tok.ID),
	}

	res.Category = decide(tok.Shape(), prev, raw)
	if res.Category == CategoryMapping {
		res.ExampleKey = c.exampleKey(raw)
	}

	cd, ok := cards[res.Category]
	if !ok {
		cd = cards[CategoryUnknown]
	}
	res.Title = cd.title
	res.Metaphor = cd.metaphor
	res.Syntax = cd.syntax
	res.Description = cd.desc
	switch res.Category {
	case CategoryFunctionCall:
		res.Syntax = fmt.Sprintf(cd.syntax, subject)
		res.Description = fmt.Sprintf(cd.desc, subject)
	case CategoryIndexing, CategorySlice:
		res.Syntax = fmt.Sprintf(cd.syntax, inner)
	}

	res.Segments = story(res)
	res.Narrative = res.Segments.Render(c.opts.Markup)

	return res, true
}

// decide applies the per-class precedence rules. raw is the untruncated
// inner text.
func decide(shape brackets.Shape, prev *brackets.Token, raw string) Category {
	switch shape {
	case brackets.ShapeRound:
		switch {
		case prev != nil && prev.IsContent() && endsWithWord(strings.TrimSpace(prev.Text)):
			return CategoryFunctionCall
		case strings.Contains(raw, ","):
			return CategoryTuple
		default:
			return CategoryPrecedence
		}
	case brackets.ShapeSquare:
		switch {
		case isSubscriptTarget(prev):
			return CategoryIndexing
		case strings.Contains(raw, ":"):
			return CategorySlice
		default:
			return CategoryList
		}
	case brackets.ShapeCurly:
		if strings.Contains(raw, ":") {
			return CategoryMapping
		}
		return CategorySet
	default:
		return CategoryUnknown
	}
}

// isSubscriptTarget reports whether prev is something a [ can index into: an
// identifier, a string literal, or the result of a closed bracket.
func isSubscriptTarget(prev *brackets.Token) bool {
	if prev == nil {
		return false
	}
	if prev.IsBracket() {
		return prev.IsClosing()
	}
	text := strings.TrimSpace(prev.Text)
	return endsWithWord(text) || strings.HasSuffix(text, `"`) || strings.HasSuffix(text, `'`)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func endsWithWord(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && isWordRune(r)
}

// trailingIdentifier returns the longest run of word characters at the end
// of s.
func trailingIdentifier(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return s[start:end]
}

func (c *Classifier) display(raw string) string {
	if raw == "" {
		return c.opts.EmptyPlaceholder
	}
	return Truncate(raw, c.opts.TruncateLength, c.opts.Ellipsis)
}

func (c *Classifier) exampleKey(raw string) string {
	key, _, _ := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return fallbackKey
	}
	return Truncate(key, c.opts.TruncateLength, c.opts.Ellipsis)
}

const speaker = "Interpreter: "

// story fills the narrative template of the result's category.
func story(r *Result) Narrative {
	switch r.Category {
	case CategoryFunctionCall:
		return Narrative{
			plain(speaker + "[Command issued] Calling the "),
			strong(r.Subject, AccentRound),
			plain(` headquarters. We feed the raw material "`),
			muted(r.Inner),
			plain(`" into the machine and wait for it to hand back a result.`),
		}
	case CategoryTuple:
		return Narrative{
			plain(speaker + "[Sealed for good] This is a record sent to the future. Packed inside: "),
			muted(r.Inner),
			plain(". Once the round brackets close around it, nobody can change what is inside."),
		}
	case CategoryPrecedence:
		return Narrative{
			plain(speaker + "[VIP lane] However complex the surrounding expression is, "),
			strong("( "+r.Inner+" )", AccentRound),
			plain(" must be worked out first. It has the final say."),
		}
	case CategoryIndexing:
		return Narrative{
			plain(speaker + "[Precise grab] Target locked! Take ticket "),
			strong("[ "+r.Inner+" ]", AccentSquare),
			plain(" to the container in front and fetch exactly that item, nothing else."),
		}
	case CategorySlice:
		return Narrative{
			plain(speaker + "[Batch cut] Clean cut! The range "),
			strong("[ "+r.Inner+" ]", AccentSquare),
			plain(" is sliced out of the list and carried off for other work."),
		}
	case CategoryList:
		return Narrative{
			plain(speaker + "[Shelf assembly] Putting together a shelf called List. Right now it holds "),
			muted(r.Inner),
			plain(". New goods are welcome at any time."),
		}
	case CategoryMapping:
		return Narrative{
			plain(speaker + `[Index page] We are building a lookup system. Call out "`),
			strong(r.ExampleKey, AccentCurly),
			plain(`" (the key) and the matching data (the value) comes right back.`),
		}
	case CategorySet:
		return Narrative{
			plain(speaker + "[Dedup filter] A realm of its own. Every duplicate is thrown out, and the remaining elements "),
			muted(r.Inner),
			plain(" tumble around the bag in no particular order."),
		}
	default:
		return Narrative{plain(speaker + "unknown")}
	}
}
