package vcf

import "testing"

func TestVariant_IsSNV(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"A to G", "A", "G", true},
		{"deletion", "AT", "A", false},
		{"insertion", "A", "AT", false},
		{"MNV", "AT", "GC", false},
		{"complex indel", "ATG", "A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsSNV(); got != tt.want {
				t.Errorf("IsSNV() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_IsIndel(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"SNV", "A", "G", false},
		{"deletion", "AT", "A", true},
		{"insertion", "A", "AT", true},
		{"complex deletion", "ATGC", "A", true},
		{"MNV same length", "AT", "GC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsIndel(); got != tt.want {
				t.Errorf("IsIndel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_IsInsertion(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"SNV", "A", "G", false},
		{"deletion", "AT", "A", false},
		{"insertion", "A", "AT", true},
		{"larger insertion", "A", "ATGC", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsInsertion(); got != tt.want {
				t.Errorf("IsInsertion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_IsDeletion(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"SNV", "A", "G", false},
		{"deletion", "AT", "A", true},
		{"insertion", "A", "AT", false},
		{"larger deletion", "ATGC", "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsDeletion(); got != tt.want {
				t.Errorf("IsDeletion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_IsPass(t *testing.T) {
	tests := []struct {
		filter string
		want   bool
	}{
		{"PASS", true},
		{".", true},
		{"", true},
		{"LowQual", false},
		{"sb;min_dp_10", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			v := &Variant{Filter: tt.filter}
			if got := v.IsPass(); got != tt.want {
				t.Errorf("IsPass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_IsSymbolic(t *testing.T) {
	tests := []struct {
		alt  string
		want bool
	}{
		{"G", false},
		{"TGCT", false},
		{"<DEL>", true},
		{"*", true},
		{".", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.alt, func(t *testing.T) {
			v := &Variant{Ref: "A", Alt: tt.alt}
			if got := v.IsSymbolic(); got != tt.want {
				t.Errorf("IsSymbolic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_SpikeDeletion(t *testing.T) {
	// Spike H69/V70 deletion in MN908947.3 coordinates.
	v := &Variant{
		Chrom: "MN908947.3",
		Pos:   21765,
		Ref:   "TACATG",
		Alt:   "T",
	}

	if v.IsSNV() {
		t.Error("H69/V70 deletion should not be classified as SNV")
	}
	if !v.IsIndel() || !v.IsDeletion() {
		t.Error("H69/V70 deletion should be classified as deletion")
	}
}
