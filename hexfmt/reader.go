// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hexfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/as6502/cpu"
)

// A Record is one parsed hex object record.
type Record struct {
	Dialect  Dialect
	End      bool   // end-of-stream record
	Address  uint16 // start address, or the block count of a MOS end record
	Data     []byte
	Checksum uint16
}

// A RecordError reports a malformed record.
type RecordError struct {
	Line int   // 1-based line number within the object stream
	Err  error // underlying error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v %s %d", e.Err, f("at record line"), e.Line)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ParseRecord parses and verifies one record in any dialect.
func ParseRecord(line string) (*Record, error) {
	line = strings.TrimSpace(line)

	r := &Record{}
	var body string
	switch {
	case strings.HasPrefix(line, ";"):
		r.Dialect, body = MOS, line[1:]
	case strings.HasPrefix(line, "S1"):
		r.Dialect, body = SRecord, line[2:]
	case strings.HasPrefix(line, "S9"):
		r.Dialect, r.End, body = SRecord, true, line[2:]
	case strings.HasPrefix(line, ":"):
		r.Dialect, body = Intel, line[1:]
	default:
		return nil, ErrSyntax
	}

	fields := []int{2, 4}
	if r.Dialect == Intel {
		fields = append(fields, 2)
	}

	var hdr []uint64
	for _, n := range fields {
		if len(body) < n {
			return nil, ErrSyntax
		}
		v, err := strconv.ParseUint(body[:n], 16, 16)
		if err != nil {
			return nil, ErrSyntax
		}
		hdr, body = append(hdr, v), body[n:]
	}

	count := int(hdr[0])
	r.Address = uint16(hdr[1])
	if r.Dialect == Intel {
		switch hdr[2] {
		case 0:
		case 1:
			r.End = true
		default:
			return nil, ErrSyntax
		}
	}
	if r.Dialect == MOS && count == 0 {
		r.End = true
	}

	if len(body) != count*2+4 {
		return nil, ErrSyntax
	}

	r.Data = make([]byte, count)
	for i := range r.Data {
		v, err := strconv.ParseUint(body[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, ErrSyntax
		}
		r.Data[i] = byte(v)
	}

	sum, err := strconv.ParseUint(body[count*2:], 16, 16)
	if err != nil {
		return nil, ErrSyntax
	}
	r.Checksum = uint16(sum)

	if r.Checksum != Checksum(r.Address, r.Data) {
		return r, ErrChecksum
	}
	return r, nil
}

// A Reader reads hex object records from an input stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	done    bool
}

// NewReader creates a record reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record. It returns io.EOF after the end record
// or at the end of the input. Blank lines are skipped.
func (r *Reader) Next() (*Record, error) {
	if r.done {
		return nil, io.EOF
	}

	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		rec, err := ParseRecord(text)
		if err != nil {
			return rec, &RecordError{Line: r.line, Err: err}
		}
		if rec.End {
			r.done = true
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Load reads records from r and stores their data in memory. It returns
// the number of data bytes stored.
func Load(r io.Reader, m cpu.Memory) (n int, err error) {
	rd := NewReader(r)
	for {
		rec, err := rd.Next()
		switch {
		case err == io.EOF:
			return n, nil
		case err != nil:
			return n, err
		case rec.End:
			continue
		}
		m.StoreBytes(rec.Address, rec.Data)
		n += len(rec.Data)
	}
}
