// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu describes the NMOS 6502 instruction set as seen by the
// assembler: mnemonics, addressing modes, opcodes and cycle counts.
package cpu

import "strings"

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symADC opsym = iota
	symAND
	symASL
	symBCC
	symBCS
	symBEQ
	symBIT
	symBMI
	symBNE
	symBPL
	symBRK
	symBVC
	symBVS
	symCLC
	symCLD
	symCLI
	symCLV
	symCMP
	symCPX
	symCPY
	symDEC
	symDEX
	symDEY
	symEOR
	symINC
	symINX
	symINY
	symJMP
	symJSR
	symLDA
	symLDX
	symLDY
	symLSR
	symNOP
	symORA
	symPHA
	symPHP
	symPLA
	symPLP
	symROL
	symROR
	symRTI
	symRTS
	symSBC
	symSEC
	symSED
	symSEI
	symSTA
	symSTX
	symSTY
	symTAX
	symTAY
	symTSX
	symTXA
	symTXS
	symTYA
)

var symName = []string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI",
	"BNE", "BPL", "BRK", "BVC", "BVS", "CLC", "CLD", "CLI",
	"CLV", "CMP", "CPX", "CPY", "DEC", "DEX", "DEY", "EOR",
	"INC", "INX", "INY", "JMP", "JSR", "LDA", "LDX", "LDY",
	"LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA",
	"STX", "STY", "TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

// Mode describes a memory addressing mode.
type Mode byte

// All addressing modes recognized by the assembler. The zero-page modes
// sit exactly ZeroPageOffset entries after their absolute counterparts.
const (
	INH Mode = iota // Inherent (no operand, or the accumulator)
	IMM             // Immediate
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	REL             // Relative
	IND             // (Indirect)
)

// NumModes is the number of addressing modes.
const NumModes = 12

// ZeroPageOffset is the distance between ABS/ABX/ABY and ZPG/ZPX/ZPY.
const ZeroPageOffset = ZPG - ABS

var modeName = []string{
	"INH",
	"IMM",
	"ABS",
	"ABX",
	"ABY",
	"ZPG",
	"ZPX",
	"ZPY",
	"IDX",
	"IDY",
	"REL",
	"IND",
}

// Length of opcode + operand in bytes for each mode.
var modeLength = []int{1, 2, 3, 3, 3, 2, 2, 2, 2, 2, 2, 3}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// Length returns the total instruction length in bytes for the mode.
func (m Mode) Length() int {
	return modeLength[m]
}

// ZeroPage returns the zero-page variant of an absolute mode. The second
// return value is false if the mode has no zero-page variant.
func (m Mode) ZeroPage() (Mode, bool) {
	switch m {
	case ABS, ABX, ABY:
		return m + ZeroPageOffset, true
	default:
		return m, false
	}
}

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	sym    opsym // internal opcode symbol
	mode   Mode  // addressing mode
	opcode byte  // opcode hex value
	cycles byte  // number of CPU cycles to execute command
}

// All valid (opcode, mode) pairs
var data = []opcodeData{
	{symADC, IMM, 0x69, 2},
	{symADC, ABS, 0x6d, 4},
	{symADC, ABX, 0x7d, 4},
	{symADC, ABY, 0x79, 4},
	{symADC, ZPG, 0x65, 3},
	{symADC, ZPX, 0x75, 4},
	{symADC, IDX, 0x61, 6},
	{symADC, IDY, 0x71, 5},

	{symAND, IMM, 0x29, 2},
	{symAND, ABS, 0x2d, 4},
	{symAND, ABX, 0x3d, 4},
	{symAND, ABY, 0x39, 4},
	{symAND, ZPG, 0x25, 3},
	{symAND, ZPX, 0x35, 4},
	{symAND, IDX, 0x21, 6},
	{symAND, IDY, 0x31, 5},

	{symASL, INH, 0x0a, 2},
	{symASL, ABS, 0x0e, 6},
	{symASL, ABX, 0x1e, 7},
	{symASL, ZPG, 0x06, 5},
	{symASL, ZPX, 0x16, 6},

	{symBCC, REL, 0x90, 2},
	{symBCS, REL, 0xb0, 2},
	{symBEQ, REL, 0xf0, 2},
	{symBMI, REL, 0x30, 2},
	{symBNE, REL, 0xd0, 2},
	{symBPL, REL, 0x10, 2},
	{symBVC, REL, 0x50, 2},
	{symBVS, REL, 0x70, 2},

	{symBIT, ABS, 0x2c, 4},
	{symBIT, ZPG, 0x24, 3},

	{symBRK, INH, 0x00, 7},

	{symCLC, INH, 0x18, 2},
	{symCLD, INH, 0xd8, 2},
	{symCLI, INH, 0x58, 2},
	{symCLV, INH, 0xb8, 2},

	{symCMP, IMM, 0xc9, 2},
	{symCMP, ABS, 0xcd, 4},
	{symCMP, ABX, 0xdd, 4},
	{symCMP, ABY, 0xd9, 4},
	{symCMP, ZPG, 0xc5, 3},
	{symCMP, ZPX, 0xd5, 4},
	{symCMP, IDX, 0xc1, 6},
	{symCMP, IDY, 0xd1, 5},

	{symCPX, IMM, 0xe0, 2},
	{symCPX, ABS, 0xec, 4},
	{symCPX, ZPG, 0xe4, 3},

	{symCPY, IMM, 0xc0, 2},
	{symCPY, ABS, 0xcc, 4},
	{symCPY, ZPG, 0xc4, 3},

	{symDEC, ABS, 0xce, 6},
	{symDEC, ABX, 0xde, 7},
	{symDEC, ZPG, 0xc6, 5},
	{symDEC, ZPX, 0xd6, 6},

	{symDEX, INH, 0xca, 2},
	{symDEY, INH, 0x88, 2},

	{symEOR, IMM, 0x49, 2},
	{symEOR, ABS, 0x4d, 4},
	{symEOR, ABX, 0x5d, 4},
	{symEOR, ABY, 0x59, 4},
	{symEOR, ZPG, 0x45, 3},
	{symEOR, ZPX, 0x55, 4},
	{symEOR, IDX, 0x41, 6},
	{symEOR, IDY, 0x51, 5},

	{symINC, ABS, 0xee, 6},
	{symINC, ABX, 0xfe, 7},
	{symINC, ZPG, 0xe6, 5},
	{symINC, ZPX, 0xf6, 6},

	{symINX, INH, 0xe8, 2},
	{symINY, INH, 0xc8, 2},

	{symJMP, ABS, 0x4c, 3},
	{symJMP, IND, 0x6c, 5},

	{symJSR, ABS, 0x20, 6},

	{symLDA, IMM, 0xa9, 2},
	{symLDA, ABS, 0xad, 4},
	{symLDA, ABX, 0xbd, 4},
	{symLDA, ABY, 0xb9, 4},
	{symLDA, ZPG, 0xa5, 3},
	{symLDA, ZPX, 0xb5, 4},
	{symLDA, IDX, 0xa1, 6},
	{symLDA, IDY, 0xb1, 5},

	{symLDX, IMM, 0xa2, 2},
	{symLDX, ABS, 0xae, 4},
	{symLDX, ABY, 0xbe, 4},
	{symLDX, ZPG, 0xa6, 3},
	{symLDX, ZPY, 0xb6, 4},

	{symLDY, IMM, 0xa0, 2},
	{symLDY, ABS, 0xac, 4},
	{symLDY, ABX, 0xbc, 4},
	{symLDY, ZPG, 0xa4, 3},
	{symLDY, ZPX, 0xb4, 4},

	{symLSR, INH, 0x4a, 2},
	{symLSR, ABS, 0x4e, 6},
	{symLSR, ABX, 0x5e, 7},
	{symLSR, ZPG, 0x46, 5},
	{symLSR, ZPX, 0x56, 6},

	{symNOP, INH, 0xea, 2},

	{symORA, IMM, 0x09, 2},
	{symORA, ABS, 0x0d, 4},
	{symORA, ABX, 0x1d, 4},
	{symORA, ABY, 0x19, 4},
	{symORA, ZPG, 0x05, 3},
	{symORA, ZPX, 0x15, 4},
	{symORA, IDX, 0x01, 6},
	{symORA, IDY, 0x11, 5},

	{symPHA, INH, 0x48, 3},
	{symPHP, INH, 0x08, 3},
	{symPLA, INH, 0x68, 4},
	{symPLP, INH, 0x28, 4},

	{symROL, INH, 0x2a, 2},
	{symROL, ABS, 0x2e, 6},
	{symROL, ABX, 0x3e, 7},
	{symROL, ZPG, 0x26, 5},
	{symROL, ZPX, 0x36, 6},

	{symROR, INH, 0x6a, 2},
	{symROR, ABS, 0x6e, 6},
	{symROR, ABX, 0x7e, 7},
	{symROR, ZPG, 0x66, 5},
	{symROR, ZPX, 0x76, 6},

	{symRTI, INH, 0x40, 6},
	{symRTS, INH, 0x60, 6},

	{symSBC, IMM, 0xe9, 2},
	{symSBC, ABS, 0xed, 4},
	{symSBC, ABX, 0xfd, 4},
	{symSBC, ABY, 0xf9, 4},
	{symSBC, ZPG, 0xe5, 3},
	{symSBC, ZPX, 0xf5, 4},
	{symSBC, IDX, 0xe1, 6},
	{symSBC, IDY, 0xf1, 5},

	{symSEC, INH, 0x38, 2},
	{symSED, INH, 0xf8, 2},
	{symSEI, INH, 0x78, 2},

	{symSTA, ABS, 0x8d, 4},
	{symSTA, ABX, 0x9d, 5},
	{symSTA, ABY, 0x99, 5},
	{symSTA, ZPG, 0x85, 3},
	{symSTA, ZPX, 0x95, 4},
	{symSTA, IDX, 0x81, 6},
	{symSTA, IDY, 0x91, 6},

	{symSTX, ABS, 0x8e, 4},
	{symSTX, ZPG, 0x86, 3},
	{symSTX, ZPY, 0x96, 4},

	{symSTY, ABS, 0x8c, 4},
	{symSTY, ZPG, 0x84, 3},
	{symSTY, ZPX, 0x94, 4},

	{symTAX, INH, 0xaa, 2},
	{symTAY, INH, 0xa8, 2},
	{symTSX, INH, 0xba, 2},
	{symTXA, INH, 0x8a, 2},
	{symTXS, INH, 0x9a, 2},
	{symTYA, INH, 0x98, 2},
}

// A Slot holds the opcode and cycle count of one addressing mode of an
// instruction. Valid is false if the instruction lacks the mode.
type Slot struct {
	Opcode byte
	Cycles byte
	Valid  bool
}

// An Instruction describes a mnemonic and its encoding in every
// addressing mode.
type Instruction struct {
	Name  string
	Slots [NumModes]Slot
}

// Has returns true if the instruction can be encoded in the mode.
func (i *Instruction) Has(m Mode) bool {
	return i.Slots[m].Valid
}

// Opcode returns the opcode for the mode, if one exists.
func (i *Instruction) Opcode(m Mode) (opcode byte, ok bool) {
	s := i.Slots[m]
	return s.Opcode, s.Valid
}

// Cycles returns the documented cycle count for the mode.
func (i *Instruction) Cycles(m Mode) int {
	return int(i.Slots[m].Cycles)
}

// IsBranch returns true for the relative-branch instructions.
func (i *Instruction) IsBranch() bool {
	return i.Slots[REL].Valid
}

// A decoded opcode: the instruction and mode it encodes.
type decoded struct {
	inst *Instruction
	mode Mode
}

// An InstructionSet contains the NMOS 6502 instructions indexed by
// mnemonic and by opcode.
type InstructionSet struct {
	instructions []Instruction
	byName       map[string]*Instruction
	byOpcode     [256]decoded
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		instructions: make([]Instruction, len(symName)),
		byName:       make(map[string]*Instruction, len(symName)),
	}

	for i, name := range symName {
		set.instructions[i].Name = name
		set.byName[name] = &set.instructions[i]
	}

	for _, d := range data {
		inst := &set.instructions[d.sym]
		inst.Slots[d.mode] = Slot{Opcode: d.opcode, Cycles: d.cycles, Valid: true}
		set.byOpcode[d.opcode] = decoded{inst: inst, mode: d.mode}
	}
	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the NMOS 6502 instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}

// Lookup returns the instruction for a mnemonic. Mnemonics are matched
// case-insensitively. Nil is returned for unknown mnemonics.
func (s *InstructionSet) Lookup(mnemonic string) *Instruction {
	return s.byName[strings.ToUpper(mnemonic)]
}

// Decode returns the instruction and addressing mode encoded by an
// opcode. The last return value is false for opcodes the NMOS 6502 does
// not document.
func (s *InstructionSet) Decode(opcode byte) (inst *Instruction, mode Mode, ok bool) {
	d := s.byOpcode[opcode]
	if d.inst == nil {
		return nil, INH, false
	}
	return d.inst, d.mode, true
}

// Instructions returns every instruction in alphabetical order.
func (s *InstructionSet) Instructions() []*Instruction {
	list := make([]*Instruction, len(s.instructions))
	for i := range s.instructions {
		list[i] = &s.instructions[i]
	}
	return list
}
