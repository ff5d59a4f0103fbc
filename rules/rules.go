//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
// They keep irrigo code on its own logging, error and HTTP client packages.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// EnhancedErrors detects stdlib error construction from a message string.
// The internal errors package only accepts an error in New, so a string
// argument means the stdlib package is in use.
//
// Old pattern:
//
//	return errors.New("unknown crop")
//
// New pattern:
//
//	return errors.Newf("unknown crop").
//	    Component("irrigation").
//	    Category(errors.CategoryValidation).
//	    Build()
func EnhancedErrors(m dsl.Matcher) {
	m.Match(`errors.New($msg)`).
		Where(m["msg"].Type.Is("string") && !m.File().Name.Matches(`_test\.go$`)).
		Report("use errors.Newf(...).Component(...).Category(...).Build() from internal/errors")
}

// ModuleLogger detects the standard log package, which bypasses module
// levels and the log file.
func ModuleLogger(m dsl.Matcher) {
	m.Import("log")

	m.Match(`log.Print($*_)`, `log.Printf($*_)`, `log.Println($*_)`,
		`log.Fatal($*_)`, `log.Fatalf($*_)`, `log.Fatalln($*_)`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report("use logger.Global().Module(name) instead of the log package")
}

// SharedHTTPClient detects requests made with the default HTTP client.
// Upstream calls go through internal/httpclient for timeouts and tests.
func SharedHTTPClient(m dsl.Matcher) {
	m.Import("net/http")

	m.Match(`http.Get($*_)`, `http.Post($*_)`, `http.Head($*_)`, `http.PostForm($*_)`).
		Report("use the shared httpclient.Client instead of the default HTTP client")

	m.Match(`http.DefaultClient.Do($*_)`).
		Report("use the shared httpclient.Client instead of http.DefaultClient")
}

// FloatEquality detects exact float assertions in tests. Water volumes and
// rain totals are derived through multiplication.
//
// Old pattern:
//
//	assert.Equal(t, 3200.0, est.PerAreaVolume)
//
// New pattern:
//
//	assert.InDelta(t, 3200.0, est.PerAreaVolume, 0)
func FloatEquality(m dsl.Matcher) {
	m.Match(`assert.Equal($t, $want, $got)`, `require.Equal($t, $want, $got)`).
		Where(m["got"].Type.Is("float64") && m.File().Name.Matches(`_test\.go$`)).
		Report("use InDelta for float64 comparisons")
}
