// Package corpus reads tab-separated document records.
package corpus

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"tfidx/internal/domain"
)

// FieldCount is the number of fields every record line must have.
const FieldCount = 3

// Reader streams records from a line-oriented corpus, one record per line.
type Reader struct {
	r    *bufio.Reader
	name string
	sep  string
	line int
}

// NewReader returns a Reader over r. name identifies the source in errors.
func NewReader(r io.Reader, name, sep string) *Reader {
	return &Reader{
		r:    bufio.NewReaderSize(r, 64*1024),
		name: name,
		sep:  sep,
	}
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (domain.Record, error) {
	line, err := r.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return domain.Record{}, errors.Wrapf(domain.ErrUnreadableSource, "%s: %v", r.name, err)
	}
	if err == io.EOF && line == "" {
		return domain.Record{}, io.EOF
	}
	r.line++

	rec, perr := ParseRecord(line, r.sep)
	if perr != nil {
		return domain.Record{}, errors.Wrapf(perr, "%s:%d", r.name, r.line)
	}
	return rec, nil
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

// ParseRecord splits one corpus line into identifier, title and body.
func ParseRecord(line, sep string) (domain.Record, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, sep)
	if len(parts) != FieldCount {
		return domain.Record{}, errors.Wrapf(domain.ErrMalformedRecord, "expected %d fields, got %d", FieldCount, len(parts))
	}
	return domain.Record{
		ID:    parts[0],
		Title: parts[1],
		Body:  parts[2],
	}, nil
}
