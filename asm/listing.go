// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// Number of code bytes shown on each listing line.
const listingBytes = 5

// WriteListing writes a listing of every source line with its address,
// generated code and cycle count.
func (a *Assembly) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range a.Lines {
		writeListingLine(bw, &a.Lines[i])
	}
	return bw.Flush()
}

func writeListingLine(w io.Writer, l *Line) {
	switch {
	case l.Mnemonic != "":
		addr := l.Address
		if l.Equ {
			addr = l.EquValue
		}
		fmt.Fprintf(w, "%4d: %04X ", l.Number, addr&0xffff)

		for i := 0; i < listingBytes; i++ {
			if i < len(l.Bytes) && !slices.Contains(l.Filler, i) {
				fmt.Fprintf(w, "%02X ", l.Bytes[i])
			} else {
				fmt.Fprint(w, "   ")
			}
		}

		fmt.Fprintf(w, "%-3.3s ", l.Cycles)
		fmt.Fprintf(w, "%-16.16s%-4.4s%-20.20s%s\n", l.Label, l.Mnemonic, l.Operand, l.Comment)

	case l.Label != "":
		fmt.Fprintf(w, "%4d: %04X                    %-16.16s                        %s\n",
			l.Number, l.Address&0xffff, l.Label, l.Comment)

	default:
		fmt.Fprintf(w, "%4d:                         %s\n", l.Number, l.Comment)
	}
}

// WriteSymbols writes the symbol table, four symbols to a row.
func (a *Assembly) WriteSymbols(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\n%s\n\n", f("Symbol Table"))

	for i, s := range a.Symbols {
		fmt.Fprintf(bw, "%-14.14s %04X  ", s.Name, s.Value&0xffff)
		if i%4 == 3 {
			fmt.Fprintln(bw)
		}
	}

	fmt.Fprintf(bw, "\n\n%s %s\n", strconv.Itoa(len(a.Symbols)), f("labels used"))
	return bw.Flush()
}

// WriteErrors writes each error followed by its source line, then every
// warning.
func (a *Assembly) WriteErrors(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range a.Errors {
		fmt.Fprintln(bw, e.Error())
		fmt.Fprintln(bw, e.Text)
	}
	for _, msg := range a.Warnings {
		fmt.Fprintln(bw, f("Warning: %s", msg))
	}
	return bw.Flush()
}

// Summary returns the final line reporting the number of errors.
func (a *Assembly) Summary() string {
	return Summary(a.ErrorCount())
}

// Summary returns the final line reporting an error count.
func Summary(errors int) string {
	return fmt.Sprintf("%04d %s [%s]", errors, f("ERRORS"), f("6502 ASSEMBLER Rev.%s", Version))
}
