// Package inlinedata pulls JSON literals out of `var <name> = <literal>;`
// assignments embedded in HTML pages.
//
// The match is non-greedy, so a literal containing `];` or `};` inside a
// string value would be truncated. The upstream pages never emit those
// sequences, this parser does not try to solve the general case.
package inlinedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// ErrNotFound is returned when the page contains no assignment for the
// requested variable. Callers are expected to branch on it, a missing
// variable is not a malformed page.
var ErrNotFound = errors.New("inline data: variable not found")

// ParseError is returned when the assignment was located but its literal
// is not valid JSON.
type ParseError struct {
	Variable string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("inline data: %q holds invalid json: %s", e.Variable, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	patternsMu sync.Mutex
	patterns   = map[string]*regexp.Regexp{}
)

func pattern(name string) *regexp.Regexp {
	patternsMu.Lock()
	defer patternsMu.Unlock()

	re, ok := patterns[name]
	if !ok {
		re = regexp.MustCompile(
			`(?s)var\s+` + regexp.QuoteMeta(name) + `\s*=\s*(\[.*?\]|\{.*?\});`,
		)
		patterns[name] = re
	}
	return re
}

// Extract locates the first `var <name> = ...;` assignment in text and
// returns the raw literal. Returns ErrNotFound when the pattern does not
// match and *ParseError when the matched literal is not valid JSON.
func Extract(text, name string) (json.RawMessage, error) {
	groups := pattern(name).FindStringSubmatch(text)
	if len(groups) < 2 {
		return nil, ErrNotFound
	}

	raw := json.RawMessage(groups[1])
	if !json.Valid(raw) {
		var probe any
		err := json.Unmarshal(raw, &probe)
		return nil, &ParseError{Variable: name, Err: err}
	}
	return raw, nil
}

// Decode extracts the literal for name and unmarshals it into v.
func Decode(text, name string, v any) error {
	raw, err := Extract(text, name)
	if err != nil {
		return err
	}
	err = json.Unmarshal(raw, v)
	if err != nil {
		return &ParseError{Variable: name, Err: err}
	}
	return nil
}
