package frontend

import (
	"fmt"
	"strings"
)

// String renders a tokenType's name for a token-stream dump.
func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "EOF"
	case tokError:
		return "ERROR"
	case tokIndent:
		return "INDENT"
	case tokNewline:
		return "NEWLINE"
	case tokIdent:
		return "IDENT"
	case tokKeyword:
		return "KEYWORD"
	case tokInt:
		return "INT"
	case tokFloat:
		return "FLOAT"
	case tokString:
		return "STRING"
	case tokBool:
		return "BOOL"
	case tokOp:
		return "OP"
	case tokArrow:
		return "ARROW"
	default:
		return "UNKNOWN"
	}
}

// TokenStream lexes src and renders one line per token, in the form
// "line:col TYPE value" — the `vslc2c tokens` subcommand's output.
func TokenStream(src string) (string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, t := range toks {
		fmt.Fprintf(&b, "%d:%d\t%s\t%q\n", t.line, t.col, t.typ, t.val)
	}
	return b.String(), nil
}

// TokenCount lexes src and returns the number of tokens produced,
// excluding the trailing EOF marker — used by --vb's statistics banner.
func TokenCount(src string) (int, error) {
	toks, err := tokenize(src)
	if err != nil {
		return 0, err
	}
	if n := len(toks); n > 0 {
		return n - 1, nil
	}
	return 0, nil
}
