// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strings"

	"github.com/beevik/as6502/cpu"
)

// An operand is an instruction operand classified into an addressing
// mode.
type operand struct {
	mode cpu.Mode // addressing mode implied by the operand's syntax
	val  value    // value of the operand expression
}

// Classify an operand string into one of the addressing modes and
// evaluate its expression.
func (a *assembler) parseOperand(ls *lineState) (o operand, err error) {
	s := newFstring(ls.fields.Operand)
	e := a.evaluator(ls.addr)

	switch {
	case s.isEmpty() || strings.EqualFold(s.str, "A"):
		return operand{mode: cpu.INH, val: resolvedValue(0)}, nil

	case s.startsWithChar('#'):
		o.mode = cpu.IMM
		o.val, s, err = e.evaluate(s.consume(1))

	case s.startsWithChar('('):
		o.val, s, err = e.evaluate(s.consume(1))
		if err == nil {
			o.mode, s, err = s.consumeIndirect()
		}

	default:
		o.val, s, err = e.evaluate(s)
		if err == nil {
			o.mode, s, err = s.consumeAbsolute()
		}
	}

	if err == nil && !s.isEmpty() {
		err = ErrOperandSyntax
	}
	return o, err
}

// Consume the end of an indirect operand following its expression.
func (l fstring) consumeIndirect() (mode cpu.Mode, remain fstring, err error) {
	switch {
	case l.startsWithFold(",X)"):
		return cpu.IDX, l.consume(3), nil
	case l.startsWithFold("),Y"):
		return cpu.IDY, l.consume(3), nil
	case l.startsWithChar(')'):
		return cpu.IND, l.consume(1), nil
	default:
		return cpu.INH, l, ErrOperandSyntax
	}
}

// Consume the optional index register following an absolute operand
// expression.
func (l fstring) consumeAbsolute() (mode cpu.Mode, remain fstring, err error) {
	switch {
	case l.startsWithFold(",X"):
		return cpu.ABX, l.consume(2), nil
	case l.startsWithFold(",Y"):
		return cpu.ABY, l.consume(2), nil
	case l.startsWithChar(','):
		return cpu.INH, l, ErrOperandSyntax
	default:
		return cpu.ABS, l, nil
	}
}

// Assemble an instruction line into its opcode and operand bytes.
func (a *assembler) assembleInstruction(ls *lineState, inst *cpu.Instruction) {
	o, err := a.parseOperand(ls)
	if err != nil {
		a.pass2Error(err)
		return
	}
	if !o.val.resolved && a.pass == 2 {
		a.addError(ErrUndefinedLabel)
	}

	mode := a.narrow(ls, inst, o)
	if mode == cpu.ABS && !inst.Has(cpu.ABS) && inst.IsBranch() {
		a.assembleBranch(ls, inst, o.val)
		return
	}

	opcode, ok := inst.Opcode(mode)
	if !ok {
		a.pass2Error(ErrIllegalMode)
		ls.pad(mode.Length())
		return
	}

	ls.mode = mode
	ls.cycles = fmt.Sprintf(" %d ", inst.Cycles(mode))
	ls.bytes = []byte{opcode}
	switch mode.Length() {
	case 2:
		ls.bytes = append(ls.bytes, a.operandByte(o.val))
	case 3:
		ls.bytes = append(ls.bytes, toBytes(2, a.operandWord(o.val))...)
	}
}

// Select the zero-page variant of an absolute mode when the operand is
// known to lie in the zero page. In pass 2 a line is narrowed only if it
// was narrowed in pass 1, so both passes agree on its size.
func (a *assembler) narrow(ls *lineState, inst *cpu.Instruction, o operand) cpu.Mode {
	zp, ok := o.mode.ZeroPage()
	if !ok || !inst.Has(zp) {
		return o.mode
	}
	if a.pass == 2 && !a.records[ls.index].narrowed {
		return o.mode
	}

	switch {
	case o.val.inZeroPage():
	case !o.val.resolved && !inst.Has(o.mode):
		// A forward reference that can only be encoded in the zero page.
	default:
		return o.mode
	}

	ls.narrowed = true
	return zp
}

// Convert an absolute operand of a branch instruction into a relative
// displacement from the following instruction.
func (a *assembler) assembleBranch(ls *lineState, inst *cpu.Instruction, v value) {
	opcode, _ := inst.Opcode(cpu.REL)
	base := ls.addr + 2

	target, offset := 0xffff, byte(0)
	if v.resolved {
		target = v.n
		var err error
		offset, err = relOffset(target, base)
		if err != nil {
			a.pass2Error(err)
		}
	}

	ls.mode = cpu.REL
	ls.bytes = []byte{opcode, offset}
	if base&0xff00 == target&0xff00 {
		ls.cycles = "2/4"
	} else {
		ls.cycles = "2/5"
	}
}

// Return the byte encoding of a one-byte operand. Unresolved operands
// encode the low byte of the $FFFF sentinel.
func (a *assembler) operandByte(v value) byte {
	switch {
	case !v.resolved:
		return 0xff
	case v.n < -128 || v.n > 0xff:
		a.pass2Error(ErrOperandTooBig)
		return 0xff
	default:
		return byte(v.n)
	}
}

// Return the 16-bit encoding of a two-byte operand.
func (a *assembler) operandWord(v value) int {
	if !v.resolved {
		return 0xffff
	}
	return v.n & 0xffff
}
