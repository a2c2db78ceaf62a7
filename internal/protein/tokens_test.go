package protein

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokens(t *testing.T) {
	tokens, err := ExtractTokens("-MTG--G-HKLH-", "QMAGDKGYH--HE")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1insQ", "T2A", "4insD", "4insK", "5insY", "6del", "7del", "9insE",
	}, tokens)
}

func TestExtractTokens_LengthMismatch(t *testing.T) {
	_, err := ExtractTokens("MA-", "MA")
	var lm *LengthMismatchError
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 3, lm.WildType)
	assert.Equal(t, 2, lm.Mutant)
}

func TestMergeInsertions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"no insertions", []string{"F2L", "4del"}, []string{"F2L", "4del"}},
		{"adjacent same anchor", []string{"4insD", "4insK"}, []string{"4insDK"}},
		{"different anchors", []string{"4insD", "5insY"}, []string{"4insD", "5insY"}},
		{"separated by substitution", []string{"4insD", "T4A", "4insK"}, []string{"4insD", "T4A", "4insK"}},
		{"prefix-only match", []string{"1insA", "11insB"}, []string{"1insA", "11insB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeInsertions(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, MergeInsertions(got), "merge must be idempotent")
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		wt, mut string
		want    []string
	}{
		{"MTGGHKLH", "QMAGDKGYHHE", []string{"1insQ", "T2A", "4insDK", "5insY", "6del", "7del", "9insE"}},
		{"KPG", "MP", []string{"K1M", "3del"}},
		{"MSDN*", "MSDS*", []string{"N4S"}},
		{"MAA", "MAAAA", []string{"4insAA"}},
		{"MFV", "MFV", nil},
	}
	for _, tt := range tests {
		t.Run(tt.wt+">"+tt.mut, func(t *testing.T) {
			got, err := Compare(tt.wt, tt.mut, DefaultScoring)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
