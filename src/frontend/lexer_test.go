package frontend

import "testing"

func collectTypes(t *testing.T, src string) []tokenType {
	t.Helper()
	l := newLexer(src)
	go l.run()
	var types []tokenType
	for {
		tok := l.nextToken()
		if tok.typ == tokError {
			t.Fatalf("lexer error: %s", tok.val)
		}
		types = append(types, tok.typ)
		if tok.typ == tokEOF {
			break
		}
	}
	return types
}

func TestLexerSimpleAssignment(t *testing.T) {
	src := "x: int = 1\n"
	got := collectTypes(t, src)
	want := []tokenType{tokIndent, tokIdent, tokOp, tokKeyword, tokOp, tokInt, tokNewline, tokEOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerIndentation(t *testing.T) {
	src := "if True:\n\tx = 1\n"
	l := newLexer(src)
	go l.run()
	var indents []string
	for {
		tok := l.nextToken()
		if tok.typ == tokError {
			t.Fatalf("lexer error: %s", tok.val)
		}
		if tok.typ == tokIndent {
			indents = append(indents, tok.val)
		}
		if tok.typ == tokEOF {
			break
		}
	}
	if len(indents) != 2 || indents[0] != "0" || indents[1] != "1" {
		t.Fatalf("got indents %v, want [0 1]", indents)
	}
}

func TestLexerLeadingSpaceIsError(t *testing.T) {
	src := "x = 1\n  y = 2\n"
	l := newLexer(src)
	go l.run()
	sawError := false
	for {
		tok := l.nextToken()
		if tok.typ == tokError {
			sawError = true
			break
		}
		if tok.typ == tokEOF {
			break
		}
	}
	if !sawError {
		t.Fatal("expected a lexer error for leading-space indentation")
	}
}

func TestLexerNegativeNumber(t *testing.T) {
	src := "x = -3\n"
	l := newLexer(src)
	go l.run()
	var vals []string
	for {
		tok := l.nextToken()
		if tok.typ == tokError {
			t.Fatalf("lexer error: %s", tok.val)
		}
		if tok.typ == tokInt {
			vals = append(vals, tok.val)
		}
		if tok.typ == tokEOF {
			break
		}
	}
	if len(vals) != 1 || vals[0] != "-3" {
		t.Fatalf("got int literals %v, want [-3]", vals)
	}
}

func TestLexerStringEscape(t *testing.T) {
	src := "x = \"a\\nb\"\n"
	l := newLexer(src)
	go l.run()
	var raw string
	for {
		tok := l.nextToken()
		if tok.typ == tokError {
			t.Fatalf("lexer error: %s", tok.val)
		}
		if tok.typ == tokString {
			raw = tok.val
		}
		if tok.typ == tokEOF {
			break
		}
	}
	got := unescape(raw)
	if got != "a\nb" {
		t.Fatalf("unescape(%q) = %q, want %q", raw, got, "a\nb")
	}
}

func TestLexerComparisonOperators(t *testing.T) {
	src := "x = a <= b\n"
	got := collectTypes(t, src)
	want := []tokenType{tokIndent, tokIdent, tokOp, tokIdent, tokOp, tokIdent, tokNewline, tokEOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerArrowAndFunctionDef(t *testing.T) {
	src := "def f(x: int) -> int:\n\treturn x\n"
	got := collectTypes(t, src)
	foundArrow := false
	for _, typ := range got {
		if typ == tokArrow {
			foundArrow = true
		}
	}
	if !foundArrow {
		t.Fatalf("expected a tokArrow in %v", got)
	}
}
