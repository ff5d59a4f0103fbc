package irrigation

import (
	"fmt"
	"strings"
	"unicode"
)

// Decision is the ternary irrigation outcome.
type Decision int

const (
	Unclear Decision = iota
	Irrigate
	DoNotIrrigate
)

// PlaceholderExplanation replaces an absent or blank advisory text.
const PlaceholderExplanation = "Sorry, no explanation provided."

const (
	affirmativeToken = "yes"
	negativeToken    = "no"
)

// String returns the wire name of the decision.
func (d Decision) String() string {
	switch d {
	case Irrigate:
		return "irrigate"
	case DoNotIrrigate:
		return "do_not_irrigate"
	default:
		return "unclear"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(text []byte) error {
	switch string(text) {
	case "irrigate":
		*d = Irrigate
	case "do_not_irrigate":
		*d = DoNotIrrigate
	case "unclear", "":
		*d = Unclear
	default:
		return fmt.Errorf("unknown decision %q", text)
	}
	return nil
}

// Advice is a classified advisory answer. Explanation keeps the original
// text unchanged, or PlaceholderExplanation when the text was empty.
type Advice struct {
	Decision    Decision `json:"decision"`
	Explanation string   `json:"explanation"`
}

// Classifier turns advisory text into Advice. Implementations must accept
// any string and never fail.
type Classifier interface {
	Classify(text string) Advice
}

// SubstringClassifier looks for "yes" and "no" anywhere in the lowercased
// text. It is deliberately lexical: "noon" and "know" both count as "no",
// "eyes" counts as "yes". Text holding both tokens, or neither, is Unclear.
type SubstringClassifier struct{}

// Classify implements Classifier.
func (SubstringClassifier) Classify(text string) Advice {
	if text == "" {
		return Advice{Decision: Unclear, Explanation: PlaceholderExplanation}
	}
	normalized := strings.ToLower(text)
	return Advice{
		Decision:    decide(strings.Contains(normalized, affirmativeToken), strings.Contains(normalized, negativeToken)),
		Explanation: text,
	}
}

// TokenClassifier matches "yes" and "no" only as whole words, so "now",
// "noon" and "know" do not count as a negative answer.
type TokenClassifier struct{}

// Classify implements Classifier.
func (TokenClassifier) Classify(text string) Advice {
	if text == "" {
		return Advice{Decision: Unclear, Explanation: PlaceholderExplanation}
	}

	var hasYes, hasNo bool
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		switch w {
		case affirmativeToken:
			hasYes = true
		case negativeToken:
			hasNo = true
		}
	}
	return Advice{Decision: decide(hasYes, hasNo), Explanation: text}
}

func decide(hasYes, hasNo bool) Decision {
	switch {
	case hasYes && !hasNo:
		return Irrigate
	case hasNo && !hasYes:
		return DoNotIrrigate
	default:
		return Unclear
	}
}

// Classifier strategy names accepted by NewClassifier.
const (
	ClassifierSubstring = "substring"
	ClassifierToken     = "token"
)

// NewClassifier returns the named strategy. An empty name selects substring
// matching; whole-word token matching is opt-in.
func NewClassifier(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ClassifierSubstring:
		return SubstringClassifier{}, nil
	case ClassifierToken:
		return TokenClassifier{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", name)
	}
}
