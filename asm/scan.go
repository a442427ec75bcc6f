// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"io"
	"strings"
)

// Source text limits.
const (
	MaxLabel    = 12  // longer labels are truncated with a warning
	MaxMnemonic = 4   // longer mnemonics are silently truncated
	MaxOperand  = 80  // longer operands are silently truncated
	MaxLine     = 255 // longer source lines are truncated with a warning
)

// Fields holds the four fields of a source line.
type Fields struct {
	Label          string
	Mnemonic       string
	Operand        string
	Comment        string
	LabelTruncated bool // label was longer than MaxLabel
}

// ScanLine splits one source line, without its newline, into label,
// mnemonic, operand and comment fields.
func ScanLine(text string) Fields {
	var fl Fields

	line := newFstring(text)
	switch {
	case line.isEmpty():
		return fl
	case line.startsWith(comment):
		fl.Comment = line.str
		return fl
	}

	var label fstring
	label, line = line.consumeUntil(labelEnd)
	fl.Label = label.str
	if len(fl.Label) > MaxLabel {
		fl.Label, fl.LabelTruncated = fl.Label[:MaxLabel], true
	}
	if line.startsWithChar(':') {
		line = line.consume(1)
	}
	line = line.consumeWhitespace()

	if !line.startsWith(comment) {
		var mnem fstring
		mnem, line = line.consumeUntil(whitespace)
		fl.Mnemonic = truncate(mnem.str, MaxMnemonic)
		line = line.consumeWhitespace()

		if !line.isEmpty() && !line.startsWith(comment) {
			fl.Operand, line = scanOperand(line)
		}
	}

	fl.Comment = line.str
	return fl
}

// Quoted operands are captured with both quotes, supplying the closing
// quote if the line lacks one.
func scanOperand(line fstring) (string, fstring) {
	if line.startsWith(stringQuote) {
		q := line.str[0]
		body, remain := line.consume(1).consumeUntilChar(q)
		if !remain.isEmpty() {
			remain = remain.consume(1)
		}
		oper := string(q) + truncate(body.str, MaxOperand-2) + string(q)
		return oper, remain.consumeWhitespace()
	}

	oper, remain := line.consumeUntil(whitespace)
	return truncate(oper.str, MaxOperand), remain.consumeWhitespace()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// A Source is a restartable stream of source lines. Each pass of the
// assembler reads the same lines from the beginning.
type Source struct {
	lines []string
}

// NewSource buffers all lines read from r.
func NewSource(r io.Reader) (*Source, error) {
	s := &Source{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		s.lines = append(s.lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceString creates a source from a string.
func NewSourceString(text string) *Source {
	s, _ := NewSource(strings.NewReader(text))
	return s
}

// Len returns the number of lines in the source.
func (s *Source) Len() int {
	return len(s.lines)
}

// Line returns the text of the 0-based line i.
func (s *Source) Line(i int) string {
	return s.lines[i]
}
