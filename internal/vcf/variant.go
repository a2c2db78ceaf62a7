// Package vcf provides VCF file parsing functionality.
package vcf

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom  string  // Sequence name (e.g., "NC_045512.2", "MN908947.3")
	Pos    int64   // 1-based genomic position
	ID     string  // Variant identifier
	Ref    string  // Reference allele
	Alt    string  // Alternate allele (single allele after splitting)
	Qual   float64 // Quality score, 0 when missing
	Filter string  // Filter status (PASS or filter name)
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// IsInsertion returns true if the variant is an insertion.
func (v *Variant) IsInsertion() bool {
	return len(v.Alt) > len(v.Ref)
}

// IsDeletion returns true if the variant is a deletion.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.Alt)
}

// IsPass returns true if the variant passed all filters. A missing
// filter ('.') counts as passing.
func (v *Variant) IsPass() bool {
	return v.Filter == "PASS" || v.Filter == "." || v.Filter == ""
}

// IsSymbolic returns true for alleles that carry no sequence, such as
// "<DEL>", "*" or ".".
func (v *Variant) IsSymbolic() bool {
	if v.Alt == "" || v.Alt == "." || v.Alt == "*" {
		return true
	}
	return v.Alt[0] == '<' || v.Alt[len(v.Alt)-1] == '>'
}
