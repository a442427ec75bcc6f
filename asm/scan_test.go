// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLine(t *testing.T) {
	tests := []struct {
		line     string
		expected Fields
	}{
		{"", Fields{}},
		{"; whole line", Fields{Comment: "; whole line"}},
		{"START", Fields{Label: "START"}},
		{"\tNOP", Fields{Mnemonic: "NOP"}},
		{"LOOP: LDA #$10 ; comment", Fields{Label: "LOOP", Mnemonic: "LDA", Operand: "#$10", Comment: "; comment"}},
		{"LOOP:LDA $10,X", Fields{Label: "LOOP", Mnemonic: "LDA", Operand: "$10,X"}},
		{"\tLDA\t;c", Fields{Mnemonic: "LDA", Comment: ";c"}},
		{"\tLDA $10 trailing text", Fields{Mnemonic: "LDA", Operand: "$10", Comment: "trailing text"}},
		{"\tLDAXY $10", Fields{Mnemonic: "LDAX", Operand: "$10"}},
		{"L\tTEX \"HI THERE\" ; c", Fields{Label: "L", Mnemonic: "TEX", Operand: `"HI THERE"`, Comment: "; c"}},
		{"\tTEX 'ABC", Fields{Mnemonic: "TEX", Operand: "'ABC'"}},
		{"ABCDEFGHIJKLMNOP NOP", Fields{Label: "ABCDEFGHIJKL", Mnemonic: "NOP", LabelTruncated: true}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ScanLine(test.line), test.line)
	}
}

func TestScanLongOperand(t *testing.T) {
	fl := ScanLine("\tFCB " + strings.Repeat("1", 90))
	assert.Len(t, fl.Operand, MaxOperand)

	fl = ScanLine("\tTEX \"" + strings.Repeat("A", 90) + "\"")
	assert.Len(t, fl.Operand, MaxOperand)
	assert.Equal(t, byte('"'), fl.Operand[MaxOperand-1])
}

func TestSource(t *testing.T) {
	src, err := NewSource(strings.NewReader("\tNOP\r\nL1\tRTS\r\n; end"))
	require.NoError(t, err)
	require.Equal(t, 3, src.Len())
	assert.Equal(t, "\tNOP", src.Line(0))
	assert.Equal(t, "L1\tRTS", src.Line(1))
	assert.Equal(t, "; end", src.Line(2))

	assert.Equal(t, 0, NewSourceString("").Len())
}
