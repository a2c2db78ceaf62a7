package output

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/inodb/vibe-covid/internal/edit"
	"github.com/inodb/vibe-covid/internal/match"
	"github.com/inodb/vibe-covid/internal/protein"
)

// Default file names in the output directory.
const (
	EditsFile     = "cds_edit.csv"
	MutationsFile = "mutations.csv"
	ReportFile    = "result.txt"
)

// EditWriter writes the edit table as CSV.
type EditWriter struct {
	w *csv.Writer
}

// NewEditWriter creates a new edit table writer.
func NewEditWriter(w io.Writer) *EditWriter {
	return &EditWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the header line.
func (ew *EditWriter) WriteHeader() error {
	return ew.w.Write([]string{"Position", "Type", "Base"})
}

// Write writes one edit. Deletions have an empty Base column.
func (ew *EditWriter) Write(e edit.Edit) error {
	return ew.w.Write([]string{strconv.FormatInt(e.Position, 10), e.Kind.String(), e.Bases})
}

// Flush flushes buffered output.
func (ew *EditWriter) Flush() error {
	ew.w.Flush()
	return ew.w.Error()
}

// MutationWriter writes the mutation table as CSV. Protein names
// containing commas or quotes are quoted.
type MutationWriter struct {
	w *csv.Writer
}

// NewMutationWriter creates a new mutation table writer.
func NewMutationWriter(w io.Writer) *MutationWriter {
	return &MutationWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the header line.
func (mw *MutationWriter) WriteHeader() error {
	return mw.w.Write([]string{"Protein", "Mutation"})
}

func (mw *MutationWriter) Write(r protein.Row) error {
	return mw.w.Write([]string{r.Protein, r.Mutation})
}

// Flush flushes buffered output.
func (mw *MutationWriter) Flush() error {
	mw.w.Flush()
	return mw.w.Error()
}

// WriteEdits writes the full edit table to path.
func WriteEdits(path string, edits []edit.Edit) error {
	return writeFile(path, func(w io.Writer) error {
		ew := NewEditWriter(w)
		if err := ew.WriteHeader(); err != nil {
			return err
		}
		for _, e := range edits {
			if err := ew.Write(e); err != nil {
				return err
			}
		}
		return ew.Flush()
	})
}

// WriteMutations writes the full mutation table to path.
func WriteMutations(path string, rows []protein.Row) error {
	return writeFile(path, func(w io.Writer) error {
		mw := NewMutationWriter(w)
		if err := mw.WriteHeader(); err != nil {
			return err
		}
		for _, r := range rows {
			if err := mw.Write(r); err != nil {
				return err
			}
		}
		return mw.Flush()
	})
}

// WriteReport writes the plain text match report to path.
func WriteReport(path string, rep *match.Report) error {
	return writeFile(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if err := rep.WriteText(bw); err != nil {
			return err
		}
		return bw.Flush()
	})
}
