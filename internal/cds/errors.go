package cds

import "fmt"

// InvalidBaseError is returned when an edit payload contains a character
// outside A, C, G, T.
type InvalidBaseError struct {
	Position int64
	Bases    string
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base in %q at position %d", e.Bases, e.Position)
}

// OutOfRangeError is returned by Exon edits whose position falls outside
// the addressable interval of the exon.
type OutOfRangeError struct {
	Op       string
	Position int64
	Start    int64
	End      int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s at position %d outside exon %d-%d", e.Op, e.Position, e.Start, e.End)
}

// IntervalError is returned when an exon interval does not match the
// length of its reference sequence.
type IntervalError struct {
	Start  int64
	End    int64
	Length int
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("interval %d-%d spans %d bases, sequence has %d",
		e.Start, e.End, e.End-e.Start+1, e.Length)
}
