package advisor

import "context"

// Static answers every prompt with fixed text. It serves offline runs and
// deployments without an advisory API.
type Static struct {
	text string
}

// NewStatic returns a source that always answers text.
func NewStatic(text string) *Static {
	return &Static{text: text}
}

// Name implements Source.
func (s *Static) Name() string { return "static" }

// Advise implements Source.
func (s *Static) Advise(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unavailable(err, "static", "advise")
	}
	return s.text, nil
}
