package irrigation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstringClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Decision
	}{
		{"affirmative", "Yes, the soil is dry", Irrigate},
		{"now contains no", "Yes, irrigate now", Unclear},
		{"negative", "No, soil is wet", DoNotIrrigate},
		{"both tokens", "Maybe, yes and no", Unclear},
		{"neither token", "Perhaps later", Unclear},
		{"empty", "", Unclear},
		{"upper case", "YES. The soil is dry.", Irrigate},
		{"substring match noon", "Wait until noon", DoNotIrrigate},
		{"substring match eyes", "Keep your eyes on the sky", Irrigate},
		{"noon with yes", "Yes, but after noon", Unclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SubstringClassifier{}.Classify(tt.text).Decision)
		})
	}
}

func TestTokenClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Decision
	}{
		{"affirmative", "Yes, irrigate now", Irrigate},
		{"negative", "No, soil is wet", DoNotIrrigate},
		{"both tokens", "Maybe, yes and no", Unclear},
		{"noon is not no", "Irrigate around noon", Unclear},
		{"yes before noon", "Yes, water before noon.", Irrigate},
		{"know is not no", "You know the soil is dry", Unclear},
		{"punctuated", "no.", DoNotIrrigate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TokenClassifier{}.Classify(tt.text).Decision)
		})
	}
}

func TestClassify_ExplanationRetained(t *testing.T) {
	t.Parallel()

	for _, c := range []Classifier{SubstringClassifier{}, TokenClassifier{}} {
		text := "  Yes, the soil is dry.\n"
		got := c.Classify(text)
		assert.Equal(t, text, got.Explanation, "%T", c)
	}
}

func TestClassify_EmptyTextUsesPlaceholder(t *testing.T) {
	t.Parallel()

	for _, c := range []Classifier{SubstringClassifier{}, TokenClassifier{}} {
		got := c.Classify("")
		assert.Equal(t, Unclear, got.Decision, "%T", c)
		assert.Equal(t, PlaceholderExplanation, got.Explanation, "%T", c)
	}
}

func TestClassify_WhitespaceTextKept(t *testing.T) {
	t.Parallel()

	for _, c := range []Classifier{SubstringClassifier{}, TokenClassifier{}} {
		for _, text := range []string{"   ", "\n\t"} {
			got := c.Classify(text)
			assert.Equal(t, Unclear, got.Decision, "%T %q", c, text)
			assert.Equal(t, text, got.Explanation, "%T %q", c, text)
		}
	}
}

func TestClassify_Total(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "y", "n", "yesno", "nö", "\x00\xff", "はい", "NO!!!", "yes no"}
	valid := []Decision{Irrigate, DoNotIrrigate, Unclear}

	for _, c := range []Classifier{SubstringClassifier{}, TokenClassifier{}} {
		for _, in := range inputs {
			assert.NotPanics(t, func() {
				got := c.Classify(in)
				assert.Contains(t, valid, got.Decision)
			})
		}
	}
}

func TestDecision_Text(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "irrigate", Irrigate.String())
	assert.Equal(t, "do_not_irrigate", DoNotIrrigate.String())
	assert.Equal(t, "unclear", Unclear.String())

	raw, err := json.Marshal(Advice{Decision: DoNotIrrigate, Explanation: "No."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"do_not_irrigate","explanation":"No."}`, string(raw))

	var d Decision
	require.NoError(t, d.UnmarshalText([]byte("irrigate")))
	assert.Equal(t, Irrigate, d)
	assert.Error(t, d.UnmarshalText([]byte("sometimes")))
}

func TestNewClassifier(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier("")
	require.NoError(t, err)
	assert.IsType(t, SubstringClassifier{}, c)

	c, err = NewClassifier("Substring")
	require.NoError(t, err)
	assert.IsType(t, SubstringClassifier{}, c)

	c, err = NewClassifier(" token ")
	require.NoError(t, err)
	assert.IsType(t, TokenClassifier{}, c)

	_, err = NewClassifier("semantic")
	assert.Error(t, err)
}

func TestDefaultClassifier_AcceptanceExamples(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier("")
	require.NoError(t, err)

	assert.Equal(t, Irrigate, c.Classify("Yes, the soil is dry").Decision)
	assert.Equal(t, DoNotIrrigate, c.Classify("No, soil is wet").Decision)
	assert.Equal(t, Unclear, c.Classify("Maybe, yes and no").Decision)
	assert.Equal(t, Unclear, c.Classify("").Decision)

	// lexical matching: "now", "noon" and "know" all hold "no"
	assert.Equal(t, Unclear, c.Classify("Yes, irrigate now").Decision)
	assert.Equal(t, DoNotIrrigate, c.Classify("Wait until noon").Decision)
	assert.Equal(t, DoNotIrrigate, c.Classify("I know it is dry").Decision)
}
