package annotate

import (
	"strings"
	"testing"
)

const sample = `# newdoc
# sent_id = 1
# text = Alice didn't go.
1	Alice	Alice	PROPN	NNP	_	3	nsubj	_	_
2-3	didn't	_	_	_	_	_	_	_	_
2	did	do	AUX	VBD	_	4	aux	_	_
3	n't	not	PART	RB	_	4	advmod	_	_
4	go	go	VERB	VB	_	0	root	_	SpaceAfter=No
4.1	gone	_	VERB	_	_	_	_	_	_
5	.	.	PUNCT	.	_	4	punct	_	_

# sent_id = 2
1	Xyzzy	_	X	_	_	0	root	_	_
`

func TestParseCoNLLU(t *testing.T) {
	table, err := ParseCoNLLU(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseCoNLLU: %v", err)
	}

	if len(table) != 6 {
		t.Fatalf("expected 6 tokens (ranges and empty nodes skipped), got %d", len(table))
	}

	if table[0].Tag != TagProperNoun || *table[0].Lemma != "Alice" {
		t.Errorf("first token: got %+v", table[0])
	}
	if table[2].Surface != "n't" || *table[2].Lemma != "not" {
		t.Errorf("third token: got %+v", table[2])
	}

	for i, tok := range table {
		if tok.Position != i+1 {
			t.Errorf("token %d: position %d, want %d", i, tok.Position, i+1)
		}
	}

	last := table[len(table)-1]
	if last.HasLemma() {
		t.Errorf("underscore lemma should be absent, got %q", *last.Lemma)
	}
	if last.Tag != TagOther {
		t.Errorf("expected X tag, got %s", last.Tag)
	}
}

func TestParseCoNLLUBadColumns(t *testing.T) {
	_, err := ParseCoNLLU(strings.NewReader("1\tonly\tthree\n"))
	if err == nil {
		t.Fatal("expected error on short line")
	}
}

func TestParseCoNLLUUnderscoreForm(t *testing.T) {
	table, err := ParseCoNLLU(strings.NewReader("1\t_\t_\tSYM\t_\t_\t_\t_\t_\t_\n"))
	if err != nil {
		t.Fatalf("ParseCoNLLU: %v", err)
	}
	if !table[0].HasLemma() || *table[0].Lemma != "_" {
		t.Errorf("an underscore token keeps its underscore lemma, got %+v", table[0])
	}
}

func TestParseTag(t *testing.T) {
	cases := map[string]Tag{
		"PROPN":   TagProperNoun,
		"noun":    TagNoun,
		" VERB ":  TagVerb,
		"NNP":     TagOther,
		"":        TagOther,
	}
	for in, want := range cases {
		if got := ParseTag(in); got != want {
			t.Errorf("ParseTag(%q) = %s, want %s", in, got, want)
		}
	}
}
