package match

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-covid/internal/protein"
)

func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"F2L, 4del, 7insA", []string{"F2L", "4del", "7insA"}},
		{" N501Y ,\tD614G\n", []string{"N501Y", "D614G"}},
		{"A, ,B,,", []string{"A", "B"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSignature(tt.in))
		})
	}
}

func TestMissingFraction(t *testing.T) {
	f, err := MissingFraction("x", []string{"A", "B", "C"}, []string{"A", "B"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, f, 1e-12)

	f, err = MissingFraction("x", []string{"A", "B"}, []string{"A", "B", "Z"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	_, err = MissingFraction("empty", nil, []string{"A"})
	var dse *DegenerateSignatureError
	require.ErrorAs(t, err, &dse)
	assert.Equal(t, "empty", dse.Name)
}

func TestMatcher_Tolerance(t *testing.T) {
	rows := []protein.Row{{Protein: "S", Mutation: "A"}, {Protein: "S", Mutation: "B"}}
	catalog := []Signature{{Name: "V", FirstDetected: "Here", Mutations: []string{"A", "B", "C"}}}

	tests := []struct {
		tolerance float64
		matched   bool
	}{
		{0.34, true},
		{0.3, false},
		{0, false},
		{1, true},
	}
	for _, tt := range tests {
		rep, err := NewMatcher("S", tt.tolerance).Match(rows, catalog)
		require.NoError(t, err)
		assert.Equal(t, tt.matched, len(rep.Hits) == 1, "tolerance %v", tt.tolerance)
	}
}

func TestMatcher_RestrictsToProtein(t *testing.T) {
	rows := []protein.Row{
		{Protein: "S", Mutation: "F2L"},
		{Protein: "N", Mutation: "N4S"},
	}
	catalog := []Signature{{Name: "N only", Mutations: []string{"N4S"}}}

	rep, err := NewMatcher("S", 0).Match(rows, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"F2L"}, rep.Mutations)
	assert.Empty(t, rep.Hits)

	rep, err = NewMatcher("N", 0).Match(rows, catalog)
	require.NoError(t, err)
	require.Len(t, rep.Hits, 1)
	assert.Equal(t, "N only", rep.Hits[0].Signature.Name)
}

func TestMatcher_DegenerateSignature(t *testing.T) {
	_, err := NewMatcher("S", 0).Match(nil, []Signature{{Name: "blank"}})
	var dse *DegenerateSignatureError
	assert.ErrorAs(t, err, &dse)
}

func TestLoadCatalog(t *testing.T) {
	sigs, err := LoadCatalog(findTestFile(t, "catalog.csv"), DefaultColumns)
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	assert.Equal(t, "Toy Alpha", sigs[0].Name)
	assert.Equal(t, "United Kingdom", sigs[0].FirstDetected)
	assert.Equal(t, []string{"F2L", "4del", "7insA"}, sigs[0].Mutations)
	assert.Equal(t, []string{"V3A", "L5P"}, sigs[2].Mutations)
}

func TestReadCatalog_CustomColumns(t *testing.T) {
	data := "Lineage,Where,Mutations\nB.1,Somewhere,\"D614G\"\n,Nowhere,A1B\n"
	sigs, err := ReadCatalog(strings.NewReader(data), Columns{
		Name:          "Lineage",
		FirstDetected: "Where",
		Mutations:     "Mutations",
	})
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, Signature{Name: "B.1", FirstDetected: "Somewhere", Mutations: []string{"D614G"}}, sigs[0])

	_, err = ReadCatalog(strings.NewReader(data), DefaultColumns)
	assert.Error(t, err)

	_, err = ReadCatalog(strings.NewReader(""), DefaultColumns)
	assert.Error(t, err)
}

func TestMatcher_Fixture(t *testing.T) {
	sigs, err := LoadCatalog(findTestFile(t, "catalog.csv"), DefaultColumns)
	require.NoError(t, err)

	rows := []protein.Row{
		{Protein: "S", Mutation: "F2L"},
		{Protein: "S", Mutation: "4del"},
		{Protein: "S", Mutation: "7insA"},
		{Protein: "N", Mutation: "N4S"},
	}

	rep, err := NewMatcher("S", 0).Match(rows, sigs)
	require.NoError(t, err)
	require.Len(t, rep.Hits, 1)
	assert.Equal(t, "Toy Alpha", rep.Hits[0].Signature.Name)

	rep, err = NewMatcher("S", 0.34).Match(rows, sigs)
	require.NoError(t, err)
	require.Len(t, rep.Hits, 2)
	assert.Equal(t, "Toy Beta", rep.Hits[1].Signature.Name)

	var sb strings.Builder
	require.NoError(t, rep.WriteText(&sb))
	assert.Equal(t,
		"S protein mutations: F2L, 4del, 7insA\n"+
			"Match: Toy Alpha [United Kingdom], Toy Beta [South Africa]\n",
		sb.String())
}

func TestReport_NoMatch(t *testing.T) {
	rep := &Report{Protein: "S"}
	var sb strings.Builder
	require.NoError(t, rep.WriteText(&sb))
	assert.Equal(t, "S protein mutations: \nNo match found\n", sb.String())
}
