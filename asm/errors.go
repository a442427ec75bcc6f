// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"

	"github.com/beevik/as6502/translate"
)

var f = translate.From

// Diagnostics recorded against source lines.
var (
	ErrDuplicateLabel   = errors.New(f("duplicate label"))
	ErrLabelDigit       = errors.New(f("label names must not begin with a digit"))
	ErrLabelChar        = errors.New(f("invalid character(s) in label name"))
	ErrLabelReserved    = errors.New(f("labels may not be named 'A', 'X' or 'Y'"))
	ErrUnknownMnemonic  = errors.New(f("unknown mnemonic"))
	ErrIllegalMode      = errors.New(f("illegal instruction/address mode"))
	ErrOperandTooBig    = errors.New(f("operand too big"))
	ErrUndefinedLabel   = errors.New(f("undefined label"))
	ErrOperandSyntax    = errors.New(f("bad syntax in operand"))
	ErrExprSyntax       = errors.New(f("syntax error in expression"))
	ErrDivideByZero     = errors.New(f("division by zero"))
	ErrAddressRange     = errors.New(f("address out of range"))
	ErrBranchTooFar     = errors.New(f("branch too far"))
	ErrAddressBeyond    = errors.New(f("current address beyond $FFFF"))
	ErrByteRange        = errors.New(f("byte value out of range"))
	ErrWordRange        = errors.New(f("word value out of range"))
	ErrForwardReference = errors.New(f("can't forward reference"))
	ErrEquNeedsLabel    = errors.New(f("EQU directive needs a label"))
	ErrTextSyntax       = errors.New(f("TEX operand must be quoted"))
	ErrSymbolTableFull  = errors.New(f("too many labels"))
)

// ErrAssemblyFailed is returned by Assemble when one or more lines had
// errors. The returned Assembly is still complete.
var ErrAssemblyFailed = errors.New(f("assembly failed"))

// A LineError is a diagnostic tied to one line of source code.
type LineError struct {
	Line int    // 1-based source line number
	Text string // source line text
	Err  error  // underlying error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v %s %d", e.Err, f("at line"), e.Line)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// directiveError annotates an error with the directive that caused it.
func directiveError(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
