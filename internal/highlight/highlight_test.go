package highlight

import (
	"strings"
	"testing"
)

func joined(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Value)
	}
	return b.String()
}

func TestTokensPreservesSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lang   string
		source string
	}{
		{name: "go", lang: "go", source: "package main\n\nfunc main() {}\n"},
		{name: "python", lang: "python", source: "def f():\n    return 1\n"},
		{name: "unknown language", lang: "no-such-lang", source: "anything at all\n"},
		{name: "empty language", lang: "", source: "plain text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens := Tokens(tt.lang, tt.source)
			if len(tokens) == 0 {
				t.Fatal("got no tokens")
			}
			if got := joined(tokens); got != tt.source {
				t.Errorf("joined tokens = %q, want source round-tripped %q", got, tt.source)
			}
		})
	}
}

func TestTokensColoursKeywords(t *testing.T) {
	t.Parallel()

	tokens := Tokens("go", "package main\n")
	var coloured bool
	for _, tok := range tokens {
		if tok.Colour != "" {
			coloured = true
			if !strings.HasPrefix(tok.Colour, "#") {
				t.Errorf("colour = %q, want #rrggbb form", tok.Colour)
			}
		}
	}
	if !coloured {
		t.Error("go source produced no coloured tokens")
	}
}

func TestTokensEmptySource(t *testing.T) {
	t.Parallel()

	tokens := Tokens("go", "")
	if len(tokens) != 1 || tokens[0].Value != "" {
		t.Errorf("tokens = %v, want single empty fallback token", tokens)
	}
}
