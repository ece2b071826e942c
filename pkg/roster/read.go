package roster

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/krampus/pkg/errors"
)

// Column names recognised in the participants header.
const (
	ColumnName   = "name"
	ColumnEmail  = "email"
	ColumnExcept = "except"
)

// ReadParticipants decodes participants from CSV.
//
// The first non-comment record is the header. Column order is free, names are
// matched case-insensitively, and unknown columns are ignored. Rows may be
// shorter than the header; missing trailing fields are empty. All fields are
// trimmed.
//
// ReadParticipants does not call [Validate].
func ReadParticipants(r io.Reader) ([]Participant, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidRoster, "participants file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRoster, err, "read header")
	}

	// Spreadsheet exports often start with a UTF-8 byte order mark.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColumnName, ColumnEmail} {
		if _, ok := cols[required]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidRoster, "header is missing the %q column", required)
		}
	}

	var participants []Participant
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if stderrors.As(err, &pe) {
				return nil, errors.Wrap(errors.ErrCodeInvalidRoster, pe.Err, "line %d", pe.Line)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidRoster, err, "read participants")
		}

		line, _ := cr.FieldPos(0)
		p := Participant{
			Name:   field(record, cols, ColumnName),
			Email:  field(record, cols, ColumnEmail),
			Except: field(record, cols, ColumnExcept),
		}
		if p.Name == "" && p.Email == "" {
			return nil, errors.New(errors.ErrCodeInvalidRoster, "line %d: missing name and email", line)
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadThemes reads one theme per line, trimming whitespace and skipping blank
// lines.
func ReadThemes(r io.Reader) ([]string, error) {
	var themes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if t := strings.TrimSpace(sc.Text()); t != "" {
			themes = append(themes, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read themes")
	}
	return themes, nil
}

// ImportParticipants reads and decodes the participants file at path.
// A missing file is reported as FILE_NOT_FOUND.
func ImportParticipants(path string) ([]Participant, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := ReadParticipants(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// ImportThemes reads the theme file at path.
func ImportThemes(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadThemes(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
