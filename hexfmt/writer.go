// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hexfmt

import (
	"fmt"
	"io"
	"strings"
)

// BlockSize is the maximum number of data bytes in one record.
const BlockSize = 24

// A Writer collects bytes into blocks tied to a start address and writes
// each block as one checksummed record.
type Writer struct {
	w       io.Writer
	dialect Dialect
	block   []byte // bytes of the open block
	addr    uint16 // start address of the open block
	blocks  int    // number of data records written
}

// NewWriter creates a writer of records in the requested dialect. The
// first block starts at address zero.
func NewWriter(w io.Writer, d Dialect) *Writer {
	return &Writer{
		w:       w,
		dialect: d,
		block:   make([]byte, 0, BlockSize),
	}
}

// PutByte appends a byte to the open block, flushing the block when it
// is full.
func (w *Writer) PutByte(b byte) error {
	w.block = append(w.block, b)
	if len(w.block) >= BlockSize {
		return w.Flush()
	}
	return nil
}

// Flush writes the open block as a record if it holds any bytes. The
// next block starts at the address following the flushed bytes.
func (w *Writer) Flush() error {
	if len(w.block) == 0 {
		return nil
	}

	err := w.writeRecord(w.addr, w.block, false)
	w.addr += uint16(len(w.block))
	w.block = w.block[:0]
	w.blocks++
	return err
}

// SetAddress flushes the open block and starts the next block at addr.
func (w *Writer) SetAddress(addr uint16) error {
	err := w.Flush()
	w.addr = addr
	return err
}

// End flushes the open block and writes the end record. In the MOS
// dialect the end record's address field holds the number of data
// records written.
func (w *Writer) End() error {
	if err := w.Flush(); err != nil {
		return err
	}

	var addr uint16
	if w.dialect == MOS {
		addr = uint16(w.blocks)
	}
	return w.writeRecord(addr, nil, true)
}

// Blocks returns the number of data records written so far.
func (w *Writer) Blocks() int {
	return w.blocks
}

func (w *Writer) writeRecord(addr uint16, data []byte, end bool) error {
	var b strings.Builder

	switch w.dialect {
	case SRecord:
		if end {
			b.WriteString("S9")
		} else {
			b.WriteString("S1")
		}
		fmt.Fprintf(&b, "%02X%04X", len(data), addr)
	case Intel:
		typ := 0
		if end {
			typ = 1
		}
		fmt.Fprintf(&b, ":%02X%04X%02X", len(data), addr, typ)
	default:
		fmt.Fprintf(&b, ";%02X%04X", len(data), addr)
	}

	for _, v := range data {
		fmt.Fprintf(&b, "%02X", v)
	}
	fmt.Fprintf(&b, "%04X\n", Checksum(addr, data))

	_, err := io.WriteString(w.w, b.String())
	return err
}

// Checksum returns the 16-bit sum of a record's byte count, the high and
// low bytes of its address, and its data bytes.
func Checksum(addr uint16, data []byte) uint16 {
	sum := uint16(len(data)) + addr>>8 + addr&0xff
	for _, v := range data {
		sum += uint16(v)
	}
	return sum
}
