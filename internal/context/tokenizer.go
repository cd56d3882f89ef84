// Package context assembles token-budget-aware prompt payloads from
// persona memory.
package context

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter measures and trims text against a token budget.
type Counter interface {
	Count(s string) int
	Truncate(s string, maxTokens int) string
}

// Tokenizer wraps tiktoken for accurate token counting.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer creates a Tokenizer using the cl100k_base encoding
// (used by GPT-4 and Claude — a good approximation for all providers).
func NewTokenizer() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding: %w", err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in s.
func (t *Tokenizer) Count(s string) int {
	return len(t.enc.Encode(s, nil, nil))
}

// Truncate truncates s to at most maxTokens tokens, returning the result.
func (t *Tokenizer) Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.enc.Decode(tokens[:maxTokens])
}

// HeuristicCounter approximates one token per four characters. It is the
// fallback when the tiktoken encoding cannot be loaded (offline first
// run) and the default in tests.
type HeuristicCounter struct{}

const charsPerToken = 4

// Count returns the approximate number of tokens in s.
func (HeuristicCounter) Count(s string) int {
	if len(s) == 0 {
		return 0
	}
	n := (len(s) + charsPerToken - 1) / charsPerToken
	return n
}

// Truncate trims s to approximately maxTokens tokens.
func (HeuristicCounter) Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	maxChars := maxTokens * charsPerToken
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars]
}

// NewCounter returns a tiktoken-backed counter when available, otherwise
// the heuristic one.
func NewCounter() Counter {
	if tok, err := NewTokenizer(); err == nil {
		return tok
	}
	return HeuristicCounter{}
}
