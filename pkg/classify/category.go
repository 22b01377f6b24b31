package classify

import (
	"github.com/walteh/bracketlens/pkg/brackets"
	"gitlab.com/tozd/go/errors"
)

// Category is the semantic role assigned to a bracket occurrence
type Category int

const (
	CategoryUnknown Category = iota

	// round brackets
	CategoryFunctionCall
	CategoryTuple
	CategoryPrecedence

	// square brackets
	CategoryIndexing
	CategorySlice
	CategoryList

	// curly brackets
	CategoryMapping
	CategorySet
)

var categoryNames = map[Category]string{
	CategoryUnknown:      "unknown",
	CategoryFunctionCall: "function_call",
	CategoryTuple:        "tuple",
	CategoryPrecedence:   "precedence",
	CategoryIndexing:     "indexing",
	CategorySlice:        "slice",
	CategoryList:         "list",
	CategoryMapping:      "mapping",
	CategorySet:          "set",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	for cat, name := range categoryNames {
		if name == string(b) {
			*c = cat
			return nil
		}
	}
	return errors.Errorf("unknown category %q", string(b))
}

// Accent is the display color class of a narrative span or result card
type Accent string

const (
	AccentNone   Accent = ""
	AccentRound  Accent = "round"
	AccentSquare Accent = "square"
	AccentCurly  Accent = "curly"
	AccentMuted  Accent = "muted"
)

// AccentOf maps a bracket shape to its accent.
func AccentOf(shape brackets.Shape) Accent {
	switch shape {
	case brackets.ShapeRound:
		return AccentRound
	case brackets.ShapeSquare:
		return AccentSquare
	case brackets.ShapeCurly:
		return AccentCurly
	default:
		return AccentMuted
	}
}

// card is the fixed part of a display record. Syntax may carry %s verbs
// filled with the subject or the inner text.
type card struct {
	title    string
	syntax   string
	desc     string
	metaphor string
}

var cards = map[Category]card{
	CategoryFunctionCall: {
		title:    "Execute & Combine",
		syntax:   "Function Call: %s()",
		desc:     "Tells the program to run the function named %s and hands it the arguments.",
		metaphor: "the start button of a machine",
	},
	CategoryTuple: {
		title:    "Immutable Sequence",
		syntax:   "Tuple",
		desc:     "Packs several values together in a fixed order. Once created it cannot be modified.",
		metaphor: "a welded metal parcel",
	},
	CategoryPrecedence: {
		title:    "Precedence",
		syntax:   "Priority (evaluate first)",
		desc:     "Changes the evaluation order and forces the enclosed expression to be worked out first.",
		metaphor: "the VIP lane",
	},
	CategoryIndexing: {
		title:    "Locate & Index",
		syntax:   "Indexing [%s]",
		desc:     "Grabs the element at a specific position or key from the container right in front.",
		metaphor: "opening a mailbox by its number",
	},
	CategorySlice: {
		title:    "Slice",
		syntax:   "List Slicing [%s]",
		desc:     "Cuts a contiguous range out of a sequence instead of a single element.",
		metaphor: "cutting off a length of sausage",
	},
	CategoryList: {
		title:    "Mutable Container",
		syntax:   "List",
		desc:     "Creates an ordered container that keeps insertion order and can be changed at any time.",
		metaphor: "a drawer with labels",
	},
	CategoryMapping: {
		title:    "Mapping & Lookup",
		syntax:   "Dictionary",
		desc:     "Associates keys with values.",
		metaphor: "the index page of a dictionary",
	},
	CategorySet: {
		title:    "Unordered Set / Format",
		syntax:   "Set / F-String",
		desc:     "Defines a group of unique elements, or a placeholder inside a string.",
		metaphor: "a lottery bag that drops duplicates",
	},
	CategoryUnknown: {
		title:    "Unknown",
		syntax:   "Unknown",
		desc:     "...",
		metaphor: "...",
	},
}
