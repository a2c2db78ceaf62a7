package vcf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParser_Sample(t *testing.T) {
	for _, name := range []string{"sample.vcf", "sample.vcf.gz"} {
		t.Run(name, func(t *testing.T) {
			parser, err := NewParser(findTestFile(t, name))
			if err != nil {
				t.Fatalf("Failed to create parser: %v", err)
			}
			defer parser.Close()

			v, err := parser.Next()
			if err != nil {
				t.Fatalf("Failed to read variant: %v", err)
			}
			if v == nil {
				t.Fatal("Expected a variant, got nil")
			}

			if v.Chrom != "TOY000001.1" {
				t.Errorf("Expected chrom TOY000001.1, got %s", v.Chrom)
			}
			if v.Pos != 16 || v.Ref != "T" || v.Alt != "G" {
				t.Errorf("Expected 16 T>G, got %d %s>%s", v.Pos, v.Ref, v.Alt)
			}
			if v.Qual != 60 {
				t.Errorf("Expected qual 60, got %v", v.Qual)
			}
			if !v.IsPass() {
				t.Error("Expected PASS filter")
			}
			if parser.LineNumber() != 6 {
				t.Errorf("Expected first record on line 6, got %d", parser.LineNumber())
			}

			count := 1
			for {
				v, err := parser.Next()
				if err != nil {
					t.Fatalf("Error reading variant: %v", err)
				}
				if v == nil {
					break
				}
				count++
			}
			if count != 9 {
				t.Errorf("Expected 9 variants, got %d", count)
			}
		})
	}
}

func TestParser_SampleNames(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "sample.vcf"))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	if parser.SampleNames() != nil {
		t.Errorf("Expected no samples, got %v", parser.SampleNames())
	}

	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\n"
	parser, err = NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	names := parser.SampleNames()
	if len(names) != 2 || names[0] != "S1" || names[1] != "S2" {
		t.Errorf("Expected samples [S1 S2], got %v", names)
	}
	if parser.LineNumber() != 2 {
		t.Errorf("Expected header to end on line 2, got %d", parser.LineNumber())
	}
}

func TestParser_FromReader(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"MN908947.3\t23403\t.\ta\tg\t.\tLowQual\t.\n" +
		"\n" +
		"MN908947.3\t21765\t.\tTACATG\tT\t812.5\tPASS\tINDEL" // no trailing newline

	parser, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	variants, err := ReadAll(parser)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("Expected 2 variants, got %d", len(variants))
	}

	first := variants[0]
	if first.Ref != "A" || first.Alt != "G" {
		t.Errorf("Expected alleles uppercased, got %s>%s", first.Ref, first.Alt)
	}
	if first.Qual != 0 {
		t.Errorf("Expected missing quality as 0, got %v", first.Qual)
	}
	if first.IsPass() {
		t.Error("LowQual should not pass")
	}

	second := variants[1]
	if !second.IsDeletion() || second.Qual != 812.5 {
		t.Errorf("Unexpected second variant: %+v", second)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing header", "chr1\t1\t.\tA\tG\t.\t.\t.\n", 1},
		{"bad position", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nx\tabc\t.\tA\tG\t.\t.\t.\n", 2},
		{"zero position", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nx\t0\t.\tA\tG\t.\t.\t.\n", 2},
		{"bad quality", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nx\t5\t.\tA\tG\thigh\t.\t.\n", 2},
		{"short line", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\nx\t5\t.\tA\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewParserFromReader(strings.NewReader(tt.input))
			if err == nil {
				_, err = ReadAll(parser)
			}
			pe, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("Expected *ParseError, got %v", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Expected error at line %d, got %d", tt.line, pe.Line)
			}
		})
	}
}

func TestSplitMultiAllelic(t *testing.T) {
	tests := []struct {
		name     string
		alt      string
		expected int
	}{
		{"single allele", "C", 1},
		{"two alleles", "C,T", 2},
		{"three alleles", "C,T,G", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{
				Chrom: "MN908947.3",
				Pos:   100,
				Ref:   "A",
				Alt:   tt.alt,
				Qual:  30,
			}

			variants := SplitMultiAllelic(v)
			if len(variants) != tt.expected {
				t.Errorf("Expected %d variants, got %d", tt.expected, len(variants))
			}

			for _, split := range variants {
				if strings.Contains(split.Alt, ",") {
					t.Errorf("Split variant should not contain comma in alt: %s", split.Alt)
				}
				if split.Qual != 30 {
					t.Errorf("Split variant lost its quality: %v", split.Qual)
				}
			}
		})
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}

// findTestFile locates a test file in the testdata directory.
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
