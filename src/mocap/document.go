package mocap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Fixed row and column positions of the export layout.
const (
	MetadataRow = 0
	HeaderRow   = 3
	DataRow     = 7
	TimeColumn  = 1
)

// FramesKey is the metadata key holding the number of data rows.
const FramesKey = "Total Exported Frames"

// Document is a fully materialized motion-capture export. It is read-only
// once constructed.
type Document struct {
	Path string
	Rows [][]string
}

// OpenDocument reads and parses the export at path.
func OpenDocument(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := ReadDocument(file)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// ReadDocument parses an export from r. Every record becomes one row and
// every blank line an empty row, so the fixed row offsets stay valid. A
// quoted field may span several lines and still counts as one row.
func ReadDocument(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	doc := &Document{}
	nextLine := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(doc.Rows), err)
		}

		line, _ := reader.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			doc.Rows = append(doc.Rows, []string{})
		}
		doc.Rows = append(doc.Rows, record)

		last := len(record) - 1
		endLine, _ := reader.FieldPos(last)
		nextLine = endLine + strings.Count(record[last], "\n") + 1
	}
	return doc, nil
}

// Row returns the row at index, or nil if the document is shorter.
func (d *Document) Row(index int) []string {
	if index < 0 || index >= len(d.Rows) {
		return nil
	}
	return d.Rows[index]
}

// Cell returns the raw cell at (row, column) and whether it exists.
func (d *Document) Cell(row, column int) (string, bool) {
	r := d.Row(row)
	if column < 0 || column >= len(r) {
		return "", false
	}
	return r[column], true
}

// Header returns the header row labels.
func (d *Document) Header() []string {
	return d.Row(HeaderRow)
}

// Metadata returns the key/value pairs stored in adjacent columns of the
// metadata row.
func (d *Document) Metadata() map[string]string {
	row := d.Row(MetadataRow)
	meta := make(map[string]string, len(row)/2)
	for i := 0; i+1 < len(row); i += 2 {
		key := strings.TrimSpace(row[i])
		if key == "" {
			continue
		}
		meta[key] = strings.TrimSpace(row[i+1])
	}
	return meta
}

// lookup returns the value following the first occurrence of key in the
// metadata row.
func (d *Document) lookup(key string) (string, bool) {
	row := d.Row(MetadataRow)
	for i, cell := range row {
		if cell == key {
			if i+1 >= len(row) {
				return "", false
			}
			return strings.TrimSpace(row[i+1]), true
		}
	}
	return "", false
}

// NFrames returns the declared number of data rows.
func (d *Document) NFrames() (int, error) {
	value, ok := d.lookup(FramesKey)
	if !ok {
		return 0, &FormatError{Key: FramesKey, Err: ErrMissingMetadata}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &FormatError{Key: FramesKey, Err: err}
	}
	if n < 0 {
		return 0, &FormatError{Key: FramesKey, Err: fmt.Errorf("negative frame count %d", n)}
	}
	return n, nil
}

// FrameRate returns the export frame rate if the document declares one.
func (d *Document) FrameRate() (float64, bool) {
	value, ok := d.lookup("Export Frame Rate")
	if !ok {
		return 0, false
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// Column returns the index of the first header column labelled tag.
func (d *Document) Column(tag Tag) (int, error) {
	for i, label := range d.Header() {
		if label == string(tag) {
			return i, nil
		}
	}
	return -1, &UnknownTagError{Tag: tag}
}

// field parses the numeric cell at (row, column). Missing cells and
// non-numeric text both report false.
func (d *Document) field(row, column int) (float64, bool) {
	cell, ok := d.Cell(row, column)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
