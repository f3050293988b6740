// Package highlight tokenises fenced code blocks with chroma so the
// renderers can emit coloured monospace runs without depending on an
// HTML formatter.
package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// styleName is the chroma style used for code colouring; a light theme
// suited to print output.
const styleName = "github"

// Token is one coloured fragment of a code block. Colour is a "#rrggbb"
// hex string, empty when the style defines no colour for the token.
type Token struct {
	Value  string
	Colour string
	Bold   bool
}

// Tokens lexes source in the given language into coloured tokens.
// Unknown languages fall back to plain-text lexing, so the result is
// always usable; failures degrade to a single uncoloured token.
func Tokens(lang, source string) []Token {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return []Token{{Value: source}}
	}

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	var out []Token
	for tok := iterator(); tok != chroma.EOF; tok = iterator() {
		entry := style.Get(tok.Type)
		t := Token{Value: tok.Value, Bold: entry.Bold == chroma.Yes}
		if entry.Colour.IsSet() {
			t.Colour = entry.Colour.String()
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []Token{{Value: source}}
	}
	return out
}
