// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strconv"

// A value is the result of evaluating an expression. An unresolved value
// depends on a label that has not been defined yet; its number is
// meaningless.
type value struct {
	n        int
	resolved bool
}

func resolvedValue(n int) value {
	return value{n: n, resolved: true}
}

var unresolvedValue = value{}

// outOfRange reports whether a resolved value exceeds the 16-bit address
// space in either direction.
func (v value) outOfRange() bool {
	return v.resolved && (v.n > 0xffff || v.n < -0xffff)
}

// inZeroPage reports whether the value is known to lie in $00..$FF.
func (v value) inZeroPage() bool {
	return v.resolved && v.n >= 0 && v.n <= 0xff
}

//
// exprOp
//

type exprOp byte

// Binary operators. There is no precedence: expressions are folded
// strictly left to right.
const (
	opAdd exprOp = iota
	opSubtract
	opMultiply
	opDivide
	opBitwiseAND
	opBitwiseOR
	opBitwiseXOR
)

type opdata struct {
	symbol byte
	eval   func(a, b int) int
}

var ops = []opdata{
	{'+', func(a, b int) int { return a + b }},
	{'-', func(a, b int) int { return a - b }},
	{'*', func(a, b int) int { return a * b }},
	{'/', func(a, b int) int { return a / b }},
	{'&', func(a, b int) int { return a & b }},
	{'|', func(a, b int) int { return a | b }},
	{'^', func(a, b int) int { return a ^ b }},
}

func lookupOp(c byte) (exprOp, bool) {
	for i, o := range ops {
		if o.symbol == c {
			return exprOp(i), true
		}
	}
	return 0, false
}

func binop(c byte) bool {
	_, ok := lookupOp(c)
	return ok
}

// An evaluator computes the values of operand expressions.
type evaluator struct {
	symbols   *SymbolTable
	addr      int  // value of the '.' term
	countRefs bool // count symbol references
}

// Evaluate an expression at the start of s. The returned remainder
// starts at the first character that is not part of the expression.
// Division by zero and out-of-range values are reported after the
// whole expression has been consumed. Every term and every intermediate
// result must fit in 16 bits.
func (e *evaluator) evaluate(s fstring) (v value, remain fstring, err error) {
	v, s, err = e.term(s)
	if err != nil {
		return value{}, s, err
	}

	var hard error
	if v.outOfRange() {
		hard, v = ErrAddressRange, resolvedValue(0)
	}

	for s.startsWith(binop) {
		op, _ := lookupOp(s.str[0])

		var rhs value
		rhs, s, err = e.term(s.consume(1))
		if err != nil {
			return value{}, s, err
		}

		switch {
		case !v.resolved || !rhs.resolved:
			v = unresolvedValue
		case rhs.outOfRange():
			v = resolvedValue(0)
			if hard == nil {
				hard = ErrAddressRange
			}
		case op == opDivide && rhs.n == 0:
			v = resolvedValue(0)
			if hard == nil {
				hard = ErrDivideByZero
			}
		default:
			v = resolvedValue(ops[op].eval(v.n, rhs.n))
			if v.outOfRange() {
				v = resolvedValue(0)
				if hard == nil {
					hard = ErrAddressRange
				}
			}
		}
	}

	if hard != nil {
		return value{}, s, hard
	}
	return v, s, nil
}

// Evaluate a term with its optional high-byte or low-byte prefix.
func (e *evaluator) term(s fstring) (v value, remain fstring, err error) {
	var prefix byte
	if s.startsWithChar('>') || s.startsWithChar('<') {
		prefix, s = s.str[0], s.consume(1)
	}

	switch {
	case s.startsWith(labelStartChar):
		var name fstring
		name, s = s.consumeWhile(labelChar)
		v = e.lookup(name.str)

	case s.startsWith(decimal):
		v, s, err = number(s, decimal, 10)

	case s.startsWithChar('$'):
		v, s, err = number(s.consume(1), hexadecimal, 16)

	case s.startsWithChar('%'):
		v, s, err = number(s.consume(1), binarynum, 2)

	case s.startsWithChar('@'):
		v, s, err = number(s.consume(1), octal, 8)

	case s.startsWith(stringQuote):
		v, s, err = charConstant(s)

	case s.startsWithChar('.'):
		v, s = resolvedValue(e.addr), s.consume(1)

	default:
		return value{}, s, ErrExprSyntax
	}

	if err != nil || !v.resolved {
		return v, s, err
	}

	switch prefix {
	case '>':
		v.n = (v.n & 0xffff) >> 8
	case '<':
		v.n = v.n & 0xff
	}
	return v, s, nil
}

func (e *evaluator) lookup(name string) value {
	sym, ok := e.symbols.Lookup(truncate(name, MaxLabel), e.countRefs)
	if !ok {
		return unresolvedValue
	}
	return resolvedValue(sym.Value)
}

func number(s fstring, digit func(c byte) bool, base int) (value, fstring, error) {
	digits, remain := s.consumeWhile(digit)
	if digits.isEmpty() {
		return value{}, remain, ErrExprSyntax
	}
	n, err := strconv.ParseInt(digits.str, base, 64)
	if err != nil {
		return value{}, remain, ErrAddressRange
	}
	return resolvedValue(int(n)), remain, nil
}

// Parse a character constant such as "A", 'A' or "^C. The closing quote
// is optional.
func charConstant(s fstring) (value, fstring, error) {
	q := s.str[0]
	s = s.consume(1)

	var v value
	switch {
	case s.startsWithChar('^'):
		s = s.consume(1)
		if s.isEmpty() || s.startsWithChar(q) {
			v = resolvedValue('^')
		} else {
			v, s = resolvedValue(int(s.str[0]&0x1f)), s.consume(1)
		}
	case s.isEmpty():
		return value{}, s, ErrExprSyntax
	default:
		v, s = resolvedValue(int(s.str[0])), s.consume(1)
	}

	if s.startsWithChar(q) {
		s = s.consume(1)
	}
	return v, s, nil
}

// Evaluate an entire string as an expression. Symbols are looked up
// without counting references, and '.' evaluates to addr.
func Eval(expr string, symbols *SymbolTable, addr int) (int, error) {
	if symbols == nil {
		symbols = NewSymbolTable(0)
	}
	e := evaluator{symbols: symbols, addr: addr}
	v, remain, err := e.evaluate(newFstring(expr))
	switch {
	case err != nil:
		return 0, err
	case !remain.isEmpty():
		return 0, ErrExprSyntax
	case !v.resolved:
		return 0, ErrUndefinedLabel
	default:
		return v.n, nil
	}
}
