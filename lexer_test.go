package lumen

import "testing"

func tokenTexts(t *testing.T, src string) []string {
	t.Helper()
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	var out []string
	for _, tok := range toks {
		if tok.Kind == TokEOF {
			break
		}
		out = append(out, tok.Text)
	}
	return out
}

func TestLexerOperatorsGreedyLongestMatch(t *testing.T) {
	cases := map[string][]string{
		"<<=":  {"<<="},
		"<<":   {"<<"},
		"<=":   {"<="},
		"<":    {"<"},
		">>=":  {">>="},
		"a+=1": {"a", "+=", "1"},
	}
	for src, want := range cases {
		got := tokenTexts(t, src)
		if len(got) != len(want) {
			t.Fatalf("%q: got %v, want %v", src, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: got %v, want %v", src, got, want)
			}
		}
	}
}

func TestLexerNestedBlockComments(t *testing.T) {
	toks := tokenTexts(t, "let /*a/*b*/c*/ n = 1;")
	want := []string{"let", "n", "=", "1", ";"}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("got %v, want %v", toks, want)
		}
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	_, err := NewLexer("let x = 1; /* oops").Tokenize()
	if err == nil {
		t.Fatal("expected a LexError for an unterminated comment")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
}

func TestLexerLineComment(t *testing.T) {
	toks := tokenTexts(t, "1 // trailing comment\n+ 2")
	want := []string{"1", "+", "2"}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks, err := NewLexer(`"a\nb\t\"c\""`).Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokString {
		t.Fatalf("expected string token, got %v", toks[0])
	}
	want := "a\nb\t\"c\""
	if toks[0].Text != want {
		t.Fatalf("got %q, want %q", toks[0].Text, want)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`"abc`).Tokenize()
	if err == nil {
		t.Fatal("expected LexError")
	}
}

func TestLexerCharLiteral(t *testing.T) {
	toks, err := NewLexer(`'x' '\n'`).Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokChar || toks[0].Text != "x" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Kind != TokChar || toks[1].Text != "\n" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexerIntAndFloat(t *testing.T) {
	toks, err := NewLexer("42 3.14 7").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != TokInt || toks[0].Text != "42" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Kind != TokFloat || toks[1].Text != "3.14" {
		t.Fatalf("got %+v", toks[1])
	}
	if toks[2].Kind != TokInt || toks[2].Text != "7" {
		t.Fatalf("got %+v", toks[2])
	}
}

func TestLexerKeywordsVsIdents(t *testing.T) {
	toks, err := NewLexer("let letter fn function").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokKeyword, "let"}, {TokIdent, "letter"}, {TokKeyword, "fn"}, {TokIdent, "function"},
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d: got %+v, want %+v", i, toks[i], w)
		}
	}
}
