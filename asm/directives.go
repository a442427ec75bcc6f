// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"strings"
)

type pseudoOpData struct {
	fn    func(a *assembler, ls *lineState, param any)
	param any
}

var pseudoOps = map[string]pseudoOpData{
	"ORG": {fn: (*assembler).parseOrigin},
	"LOC": {fn: (*assembler).parseOrigin},
	"EQU": {fn: (*assembler).parseEquate},
	"FCB": {fn: (*assembler).parseData, param: 1},
	"BYT": {fn: (*assembler).parseData, param: 1},
	"FCW": {fn: (*assembler).parseData, param: 2},
	"WRD": {fn: (*assembler).parseData, param: 2},
	"TEX": {fn: (*assembler).parseText},
	"RMB": {fn: (*assembler).parseReserve},
	"END": {fn: (*assembler).parseEnd},
}

// IsDirective reports whether a mnemonic names an assembler directive.
func IsDirective(mnemonic string) bool {
	_, ok := pseudoOps[strings.ToUpper(mnemonic)]
	return ok
}

// Evaluate the operand of a directive whose value must be known in
// pass 1. Errors are recorded against the directive.
func (a *assembler) evalDefinite(ls *lineState, name string) (int, bool) {
	e := a.evaluator(ls.addr)
	v, remain, err := e.evaluate(newFstring(ls.fields.Operand))
	switch {
	case err != nil:
		a.addError(directiveError(name, err))
	case !remain.isEmpty():
		a.addError(directiveError(name, ErrOperandSyntax))
	case !v.resolved:
		a.addError(directiveError(name, ErrForwardReference))
	default:
		return v.n, true
	}
	return 0, false
}

// Evaluate a directive's operand again in pass 2 so the labels it uses
// are counted as referenced. The value itself was fixed in pass 1.
func (a *assembler) countReferences(ls *lineState) {
	a.evaluator(ls.addr).evaluate(newFstring(ls.fields.Operand))
}

// ORG sets the address counter. In pass 2 it flushes the object block
// and starts a new one at the new address.
func (a *assembler) parseOrigin(ls *lineState, param any) {
	if a.pass == 2 {
		a.countReferences(ls)
		ls.addr = a.records[ls.index].next
		a.setObjectAddress(ls.addr)
		return
	}

	n, ok := a.evalDefinite(ls, "ORG")
	switch {
	case !ok:
	case n < 0:
		a.addError(directiveError("ORG", ErrAddressRange))
	default:
		ls.next = n
		a.log("ORG   $%04X", n)
	}
}

// EQU binds the line's label to a value. It takes effect in pass 1 only.
func (a *assembler) parseEquate(ls *lineState, param any) {
	if a.pass == 2 {
		if a.records[ls.index].defined {
			sym, _ := a.symbols.Lookup(ls.fields.Label, false)
			ls.equ, ls.equValue = true, sym.Value
		}
		return
	}

	if ls.fields.Label == "" {
		a.addError(ErrEquNeedsLabel)
		return
	}

	n, ok := a.evalDefinite(ls, "EQU")
	if ok && ls.defined {
		a.symbols.Set(ls.fields.Label, n)
		a.log("EQU   %-12s = $%04X", ls.fields.Label, n)
	}
}

// FCB and FCW emit a comma-separated list of bytes or little-endian
// words. Elements that cannot be encoded emit placeholder data so the
// code size is the same in both passes.
func (a *assembler) parseData(ls *lineState, param any) {
	unit := param.(int)
	name := strings.ToUpper(ls.fields.Mnemonic)

	s := newFstring(ls.fields.Operand)
	if s.isEmpty() {
		a.pass2Error(directiveError(name, ErrOperandSyntax))
		return
	}

	e := a.evaluator(ls.addr)
	for {
		v, remain, err := e.evaluate(s)
		switch {
		case err != nil:
			a.pass2Error(directiveError(name, err))
			ls.pad(unit)
			if errors.Is(err, ErrExprSyntax) {
				return
			}
		case !v.resolved:
			a.pass2Error(directiveError(name, ErrUndefinedLabel))
			ls.pad(unit)
		default:
			a.dataBytes(ls, name, unit, v.n)
		}

		if !remain.startsWithChar(',') {
			if !remain.isEmpty() {
				a.pass2Error(directiveError(name, ErrOperandSyntax))
			}
			return
		}
		s = remain.consume(1)
	}
}

func (a *assembler) dataBytes(ls *lineState, name string, unit, n int) {
	switch {
	case unit == 1 && (n < -0x80 || n > 0xff):
		a.pass2Error(directiveError(name, ErrByteRange))
		ls.pad(1)
	case unit == 2 && (n < -0x8000 || n > 0xffff):
		a.pass2Error(directiveError(name, ErrWordRange))
		ls.pad(2)
	default:
		ls.bytes = append(ls.bytes, toBytes(unit, n)...)
	}
}

// TEX emits the characters between a pair of matching quotes.
func (a *assembler) parseText(ls *lineState, param any) {
	oper := ls.fields.Operand
	if len(oper) < 2 || !stringQuote(oper[0]) || oper[len(oper)-1] != oper[0] {
		a.pass2Error(directiveError("TEX", ErrTextSyntax))
		return
	}
	ls.bytes = append(ls.bytes, oper[1:len(oper)-1]...)
}

// RMB reserves bytes by advancing the address counter without emitting
// any code. In pass 2 it flushes the object block.
func (a *assembler) parseReserve(ls *lineState, param any) {
	if a.pass == 2 {
		a.countReferences(ls)
		a.setObjectAddress(a.records[ls.index].next)
		return
	}

	n, ok := a.evalDefinite(ls, "RMB")
	switch {
	case !ok:
	case n < 0:
		a.addError(directiveError("RMB", ErrAddressRange))
	default:
		ls.next = ls.addr + n
	}
}

func (a *assembler) parseEnd(ls *lineState, param any) {
}
