package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "lowercases", input: "OLD TOM DISTILLERY", expected: "old tom distillery"},
		{name: "strips diacritics", input: "Crème Brûlée Liqueur", expected: "creme brulee liqueur"},
		{name: "punctuation becomes space", input: "45% ALC./VOL.", expected: "45 alc vol"},
		{name: "collapses whitespace", input: "  too \t many\n\nspaces  ", expected: "too many spaces"},
		{name: "apostrophes split words", input: "Maker's Mark", expected: "maker s mark"},
		{name: "compatibility forms", input: "ﬁne ㎖", expected: "fine ml"},
		{name: "dotted capital i", input: "İstanbul", expected: "istanbul"},
		{name: "non latin scripts removed", input: "Ouzo Ούζο 40%", expected: "ouzo 40"},
		{name: "only punctuation", input: "%%% --- !!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"OLD TOM DISTILLERY\nKENTUCKY STRAIGHT BOURBON WHISKEY 45% 750ml",
		"Château Lafite-Rothschild 1.5 L",
		"  ÀÉÎÕÜ çñ ß Æ  ",
		"ＦＵＬＬＷＩＤＴＨ ４０％",
		"",
		"́́",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.Regexp(t, `^[a-z0-9 ]*$`, once)
	}
}

func TestFold_KeepsPunctuation(t *testing.T) {
	assert.Equal(t, "1.5 l", Fold("1.5 L"))
	assert.Equal(t, "rose 12.5%", Fold("Rosé 12.5%"))
	assert.Equal(t, "", Fold(""))
}
