// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/beevik/as6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"%s",      // INH
	"#$%s",    // IMM
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"$%s",     // REL
	"($%s)",   // IND
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice,
// most significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in memory 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code. Undocumented
// opcodes are shown as a one-byte FCB directive.
func Disassemble(m cpu.Memory, addr uint16) (line string, next uint16) {
	opcode := m.LoadByte(addr)
	inst, mode, ok := cpu.GetInstructionSet().Decode(opcode)
	if !ok {
		return fmt.Sprintf("FCB $%02X", opcode), addr + 1
	}

	operand := make([]byte, mode.Length()-1)
	m.LoadBytes(addr+1, operand)
	if mode == cpu.REL {
		// Convert relative offset to absolute address.
		braddr := int(addr) + mode.Length() + int(operand[0])
		if operand[0] > 0x7f {
			braddr -= 256
		}
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}

	if mode == cpu.INH {
		line = inst.Name
	} else {
		line = inst.Name + " " + fmt.Sprintf(modeFormat[mode], hexString(operand))
	}
	next = addr + uint16(mode.Length())
	return
}

// Code returns the bytes of the instruction at 'addr'.
func Code(m cpu.Memory, addr uint16) []byte {
	_, mode, ok := cpu.GetInstructionSet().Decode(m.LoadByte(addr))
	n := 1
	if ok {
		n = mode.Length()
	}
	b := make([]byte, n)
	m.LoadBytes(addr, b)
	return b
}
