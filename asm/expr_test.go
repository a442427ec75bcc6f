// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	symbols := NewSymbolTable(0)
	require.NoError(t, symbols.Insert("START", 0x0200))
	require.NoError(t, symbols.Insert("ABCDEFGHIJKL", 7))

	tests := []struct {
		expr     string
		expected int
	}{
		{"1+2*3", 9},
		{"7/2", 3},
		{"0-7/2", -3},
		{"5-10", -5},
		{"$F0|$0F", 0xff},
		{"$FF^$0F", 0xf0},
		{"$F0&$3C", 0x30},
		{"%1010", 10},
		{"@17", 15},
		{"'A'", 65},
		{"'A", 65},
		{`"^C`, 3},
		{`'^C'`, 3},
		{`"^"`, '^'},
		{">$1234", 0x12},
		{"<$1234", 0x34},
		{">$1234+1", 0x13},
		{"START+1", 0x201},
		{">START", 0x02},
		{"<START", 0x00},
		{"ABCDEFGHIJKLMNOP", 7},
		{".", 0x1234},
		{".+2", 0x1236},
		{"0-$FFFF", -0xffff},
	}

	for _, test := range tests {
		v, err := Eval(test.expr, symbols, 0x1234)
		if assert.NoError(t, err, test.expr) {
			assert.Equal(t, test.expected, v, test.expr)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		err  error
	}{
		{"10/0", ErrDivideByZero},
		{"10/0+UNDEF", ErrDivideByZero},
		{"$FFFF+1", ErrAddressRange},
		{"0-$FFFF-1", ErrAddressRange},
		{"$10000/2", ErrAddressRange},
		{"$100*$100/$200", ErrAddressRange},
		{"$100*$100*$100*$100*$100*$100*$100*$100", ErrAddressRange},
		{"$100*$100/0", ErrAddressRange},
		{"$", ErrExprSyntax},
		{"1+", ErrExprSyntax},
		{"12x", ErrExprSyntax},
		{"-1", ErrExprSyntax},
		{"", ErrExprSyntax},
		{"UNDEF", ErrUndefinedLabel},
		{"UNDEF+1", ErrUndefinedLabel},
	}

	for _, test := range tests {
		_, err := Eval(test.expr, nil, 0)
		assert.ErrorIs(t, err, test.err, test.expr)
	}
}

func TestEvaluatorRemainder(t *testing.T) {
	symbols := NewSymbolTable(0)
	require.NoError(t, symbols.Insert("PTR", 0x20))

	e := &evaluator{symbols: symbols, countRefs: true}
	v, remain, err := e.evaluate(newFstring("PTR+1,X"))
	require.NoError(t, err)
	assert.Equal(t, resolvedValue(0x21), v)
	assert.Equal(t, ",X", remain.str)
	assert.Equal(t, 5, remain.column)

	sym, _ := symbols.Lookup("PTR", false)
	assert.Equal(t, 1, sym.References)

	v, _, err = e.evaluate(newFstring("FWD*2"))
	require.NoError(t, err)
	assert.False(t, v.resolved)
	assert.False(t, v.inZeroPage())
}
