// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beevik/as6502/hexfmt"
)

func assemble(code string) (*Assembly, error) {
	return Assemble(NewSourceString(code), nil, Options{Out: io.Discard})
}

func codeString(a *Assembly) string {
	var b []byte
	for _, l := range a.Lines {
		b = append(b, l.Bytes...)
	}
	return strings.ReplaceAll(byteString(b), " ", "")
}

func checkASM(t *testing.T, asm string, expected string) {
	t.Helper()
	a, err := assemble(asm)
	if err != nil {
		t.Error(err)
		for _, e := range a.Errors {
			t.Error(e)
		}
		return
	}

	s := codeString(a)
	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

// Check that assembly records exactly one error matching target and
// still generates the expected code.
func checkASMError(t *testing.T, asm string, target error, expected string) {
	t.Helper()
	a, err := assemble(asm)
	if !errors.Is(err, ErrAssemblyFailed) {
		t.Errorf("Expected error on %s, didn't get one\n", asm)
		return
	}
	if assert.Len(t, a.Errors, 1, asm) {
		assert.ErrorIs(t, a.Errors[0], target, asm)
	}
	assert.Equal(t, expected, codeString(a), asm)
}

func TestAddressingIMM(t *testing.T) {
	asm := `
	LDA #$20
	LDX #$20
	LDY #$20
	ADC #$20
	SBC #$20
	CMP #$20
	CPX #$20
	CPY #$20
	AND #$20
	ORA #$20
	EOR #$20`

	checkASM(t, asm, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingABS(t *testing.T) {
	asm := `
	LDA $2000
	LDX $2000
	LDY $2000
	STA $2000
	STX $2000
	STY $2000
	ADC $2000
	SBC $2000
	CMP $2000
	CPX $2000
	CPY $2000
	BIT $2000
	AND $2000
	ORA $2000
	EOR $2000
	INC $2000
	DEC $2000
	JMP $2000
	JSR $2000
	ASL $2000
	LSR $2000
	ROL $2000
	ROR $2000`

	checkASM(t, asm, "AD0020AE0020AC00208D00208E00208C00206D0020ED0020CD0020"+
		"EC0020CC00202C00202D00200D00204D0020EE0020CE00204C00202000200E0020"+
		"4E00202E00206E0020")
}

func TestAddressingABX(t *testing.T) {
	asm := `
	LDA $2000,X
	LDY $2000,X
	STA $2000,X
	ADC $2000,X
	SBC $2000,X
	CMP $2000,X
	AND $2000,X
	ORA $2000,X
	EOR $2000,X
	INC $2000,X
	DEC $2000,X
	ASL $2000,X
	LSR $2000,X
	ROL $2000,X
	ROR $2000,X`

	checkASM(t, asm, "BD0020BC00209D00207D0020FD0020DD00203D00201D00205D0020"+
		"FE0020DE00201E00205E00203E00207E0020")
}

func TestAddressingABY(t *testing.T) {
	asm := `
	LDA $2000,Y
	LDX $2000,Y
	STA $2000,Y
	ADC $2000,Y
	SBC $2000,Y
	CMP $2000,Y
	AND $2000,Y
	ORA $2000,Y
	EOR $2000,Y`

	checkASM(t, asm, "B90020BE0020990020790020F90020D90020390020190020590020")
}

func TestAddressingZPG(t *testing.T) {
	asm := `
	LDA $20
	LDX $20
	LDY $20
	STA $20
	STX $20
	STY $20
	ADC $20
	SBC $20
	CMP $20
	CPX $20
	CPY $20
	BIT $20
	AND $20
	ORA $20
	EOR $20
	INC $20
	DEC $20
	ASL $20
	LSR $20
	ROL $20
	ROR $20`

	checkASM(t, asm, "A520A620A4208520862084206520E520C520E420C42024202520"+
		"05204520E620C6200620462026206620")
}

func TestAddressingZPXY(t *testing.T) {
	asm := `
	LDA $20,X
	LDY $20,x
	STY $20,X
	LDX $20,Y
	STX $20,y
	LDA $20,Y`

	checkASM(t, asm, "B520B4209420B6209620B92000")
}

func TestAddressingIndirect(t *testing.T) {
	asm := `
	JMP ($20)
	JMP ($2000)
	LDA ($20,X)
	LDA ($20),Y
	sta ($20,x)
	sta ($20),y`

	checkASM(t, asm, "6C20006C0020A120B12081209120")
}

func TestAddressingInherent(t *testing.T) {
	asm := `
	ASL
	ASL A
	lsr a
	ROL
	ROR A
	NOP
	RTS
	BRK`

	checkASM(t, asm, "0A0A4A2A6AEA6000")
}

func TestImmediate(t *testing.T) {
	a, err := assemble("\tLDA #$41")
	require.NoError(t, err)
	require.Len(t, a.Lines, 1)
	assert.Equal(t, []byte{0xa9, 0x41}, a.Lines[0].Bytes)
	assert.Equal(t, " 2 ", a.Lines[0].Cycles)
}

func TestZeroPageNarrowing(t *testing.T) {
	a, err := assemble("\tLDA $10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa5, 0x10}, a.Lines[0].Bytes)
	assert.Equal(t, " 3 ", a.Lines[0].Cycles)

	// A forward reference keeps the absolute form, even when it turns
	// out to lie in the zero page.
	checkASM(t, "\tLDA VAR\nVAR\tEQU $10", "AD1000")

	// A forward reference that can only be encoded in the zero page.
	checkASM(t, "\tSTX PTR,Y\nPTR\tEQU $20", "9620")
}

func TestBranchBackward(t *testing.T) {
	a, err := assemble("LOOP: DEX\n\tBNE LOOP")
	require.NoError(t, err)
	assert.Equal(t, "CAD0FD", codeString(a))
	assert.Equal(t, "2/4", a.Lines[1].Cycles)
}

func TestBranchForward(t *testing.T) {
	checkASM(t, "\tBEQ DONE\n\tNOP\nDONE\tRTS", "F001EA60")
}

func TestBranchPageCrossing(t *testing.T) {
	a, err := assemble("\tORG $10FF\nBACK\tNOP\n\tBNE BACK")
	require.NoError(t, err)
	assert.Equal(t, "EAD0FD", codeString(a))
	assert.Equal(t, "2/5", a.Lines[2].Cycles)
}

func TestBranchTooFar(t *testing.T) {
	checkASMError(t, "\tBNE FAR\n\tRMB 200\nFAR\tRTS", ErrBranchTooFar, "D00060")
}

func TestForwardReference(t *testing.T) {
	checkASM(t, "\tJMP TARGET\n\tNOP\nTARGET\tRTS", "4C0400EA60")
}

func TestUndefinedSymbol(t *testing.T) {
	checkASMError(t, "\tJMP NOWHERE", ErrUndefinedLabel, "4CFFFF")
	checkASMError(t, "\tLDA NOWHERE", ErrUndefinedLabel, "ADFFFF")
	checkASMError(t, "\tLDA #NOWHERE", ErrUndefinedLabel, "A9FF")
	checkASMError(t, "\tBNE NOWHERE", ErrUndefinedLabel, "D000")

	a, _ := assemble("\tJMP NOWHERE")
	assert.Equal(t, 1, a.ErrorCount())
	assert.Equal(t, "undefined label at line 1", a.Errors[0].Error())
	assert.Equal(t, "\tJMP NOWHERE", a.Errors[0].Text)
}

func TestReservedLabel(t *testing.T) {
	for _, name := range []string{"X", "x", "A", "Y"} {
		a, err := assemble(name + "\tNOP")
		assert.ErrorIs(t, err, ErrAssemblyFailed)
		require.Len(t, a.Errors, 1)
		assert.ErrorIs(t, a.Errors[0], ErrLabelReserved)
		assert.Empty(t, a.Symbols)
		assert.Equal(t, "EA", codeString(a))
	}
}

func TestLabelErrors(t *testing.T) {
	checkASMError(t, "1ABC\tNOP", ErrLabelDigit, "EA")
	checkASMError(t, "AB.C\tNOP", ErrLabelChar, "EA")
	checkASMError(t, "L1\tNOP\nL1\tNOP", ErrDuplicateLabel, "EAEA")

	a, _ := assemble("L1\tNOP\nL1\tNOP")
	require.Len(t, a.Symbols, 1)
	assert.Equal(t, 0, a.Symbols[0].Value)
}

func TestLabelTruncated(t *testing.T) {
	a, err := assemble("ABCDEFGHIJKLMNOP\tNOP\n\tJMP ABCDEFGHIJKLMNOP")
	require.NoError(t, err)
	require.Len(t, a.Symbols, 1)
	assert.Equal(t, "ABCDEFGHIJKL", a.Symbols[0].Name)
	assert.Equal(t, "EA4C0000", codeString(a))
	assert.Contains(t, a.Warnings, "ABCDEFGHIJKL: label truncated at 12 characters")
}

func TestInstructionErrors(t *testing.T) {
	checkASMError(t, "\tFOO", ErrUnknownMnemonic, "")
	checkASMError(t, "\tSTA #$10", ErrIllegalMode, "FFFF")
	checkASMError(t, "\tJSR ($1234)", ErrIllegalMode, "FFFFFF")
	checkASMError(t, "\tLDA A", ErrIllegalMode, "FF")
	checkASMError(t, "\tLDA #$100", ErrOperandTooBig, "A9FF")
	checkASMError(t, "\tLDA ($10", ErrOperandSyntax, "")
	checkASMError(t, "\tLDA $10,Z", ErrOperandSyntax, "")
	checkASMError(t, "\tLDA ($10),X", ErrOperandSyntax, "")
	checkASMError(t, "\tLDA $10+", ErrExprSyntax, "")
	checkASMError(t, "\tLDA #1/0", ErrDivideByZero, "")
}

func TestSizePreservedOnPass2Error(t *testing.T) {
	// The divisor is unknown in pass 1, so the line is sized as an
	// absolute instruction. Pass 2 keeps that size.
	a, err := assemble("\tLDA 1/ZERO\nNEXT\tNOP\nZERO\tEQU 0")
	assert.ErrorIs(t, err, ErrAssemblyFailed)
	require.Len(t, a.Errors, 1)
	assert.ErrorIs(t, a.Errors[0], ErrDivideByZero)
	assert.Equal(t, "FFFFFFEA", codeString(a))
	assert.Equal(t, 3, a.Lines[1].Address)
}

func TestAddressBeyond(t *testing.T) {
	checkASMError(t, "\tORG $FFFF\n\tNOP\n\tNOP", ErrAddressBeyond, "EAFF")
	checkASMError(t, "\tORG $FFFF\n\tNOP\n\tJMP $1234", ErrAddressBeyond, "EAFFFFFF")

	// Code past $FFFF is kept out of the object records.
	var obj bytes.Buffer
	a, err := Assemble(NewSourceString("\tORG $FFFF\n\tNOP\n\tNOP"),
		hexfmt.NewWriter(&obj, hexfmt.MOS), Options{Out: io.Discard})
	assert.ErrorIs(t, err, ErrAssemblyFailed)
	assert.Equal(t, ";01FFFFEA02E9\n;0000010001\n", obj.String())
	assert.Equal(t, 2, a.Size)
	assert.Equal(t, []int{0}, a.Lines[2].Filler)
}

func TestOperandRange(t *testing.T) {
	checkASMError(t, "\tLDA $100*$100/$200", ErrAddressRange, "")
	checkASMError(t, "\tLDA #$100*$100*$100*$100*$100*$100*$100*$100", ErrAddressRange, "")
	checkASMError(t, "\tFCW $100*$100/$200,1", ErrAddressRange, "FFFF0100")
}

func TestDataBytes(t *testing.T) {
	asm := `
	FCB $41,'B'
	BYT 'f
	FCB >$ABCD,<$ABCD
	FCB 1+2+3+4
	FCB 5-6
	FCB %01010101,@17
	FCB 1,"^C,"^"`

	checkASM(t, asm, "414266ABCD0AFF550F01035E")
}

func TestDataWords(t *testing.T) {
	asm := `
	FCW $ABCD
	WRD $0102,5
	FCW 0-1
	FCW LABEL
LABEL	FCW .`

	checkASM(t, asm, "CDAB02010500FFFF0A000A00")
}

func TestDataErrors(t *testing.T) {
	checkASMError(t, "\tFCB 256", ErrByteRange, "FF")
	checkASMError(t, "\tFCB 1,UNDEF,3", ErrUndefinedLabel, "01FF03")
	checkASMError(t, "\tFCW UNDEF", ErrUndefinedLabel, "FFFF")
	checkASMError(t, "\tFCB", ErrOperandSyntax, "")
	checkASMError(t, "\tFCB 1;2", ErrOperandSyntax, "01")
}

func TestText(t *testing.T) {
	checkASM(t, "\tTEX \"HELLO, WORLD\"", "48454C4C4F2C20574F524C44")
	checkASM(t, "\tTEX 'A\"B'", "412242")
	checkASMError(t, "\tTEX HELLO", ErrTextSyntax, "")
}

func TestReserve(t *testing.T) {
	a, err := assemble("\tNOP\n\tRMB 4\nHERE\tNOP\n\tJMP HERE")
	require.NoError(t, err)
	assert.Equal(t, "EAEA4C0500", codeString(a))
	assert.Equal(t, 5, a.Symbols[0].Value)
}

func TestEquate(t *testing.T) {
	a, err := assemble("SIZE\tEQU 4*2\n\tLDA #SIZE\n\tEND\n\tEND")
	require.NoError(t, err)
	assert.Equal(t, "A908", codeString(a))
	assert.True(t, a.Lines[0].Equ)
	assert.Equal(t, 8, a.Lines[0].EquValue)
}

func TestEquateErrors(t *testing.T) {
	a, err := assemble("A1\tEQU B1\nB1\tEQU 5\n\tFCB A1,B1")
	assert.ErrorIs(t, err, ErrAssemblyFailed)
	require.Len(t, a.Errors, 1)
	assert.ErrorIs(t, a.Errors[0], ErrForwardReference)
	assert.Equal(t, "EQU: can't forward reference at line 1", a.Errors[0].Error())
	assert.Equal(t, "0005", codeString(a))

	checkASMError(t, "\tEQU 5", ErrEquNeedsLabel, "")
}

func TestOrigin(t *testing.T) {
	a, err := assemble("\tORG $0200\nSTART\tNOP\n\tLOC $0300\n\tJMP START")
	require.NoError(t, err)
	assert.Equal(t, 0x200, a.Lines[1].Address)
	assert.Equal(t, 0x300, a.Lines[2].Address)
	assert.Equal(t, 0x300, a.Lines[3].Address)
	assert.Equal(t, "EA4C0002", codeString(a))

	checkASMError(t, "\tORG START\nSTART\tNOP", ErrForwardReference, "EA")
}

func TestBaseAddress(t *testing.T) {
	a, err := Assemble(NewSourceString("START\tJMP START"), nil, Options{Base: 0x1000, Out: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, "4C0010", codeString(a))
}

func TestPassAddressAgreement(t *testing.T) {
	asm := `	ORG $0200
START	LDA #$00
	STA $10
	LDX $1234,Y
LOOP	DEX
	BNE LOOP
	JMP START
	FCB 1,2,3
	FCW START
	TEX "AB"
	RMB 2
END1	RTS`

	a, err := assemble(asm)
	require.NoError(t, err)

	expected := []int{0x200, 0x200, 0x202, 0x204, 0x207, 0x208, 0x20a, 0x20d, 0x210, 0x212, 0x214, 0x216}
	require.Len(t, a.Lines, len(expected))
	for i, addr := range expected {
		assert.Equal(t, addr, a.Lines[i].Address, "line %d", i+1)
	}

	for _, s := range a.Symbols {
		l := a.Lines[indexOfLabel(a, s.Name)]
		assert.Equal(t, l.Address, s.Value, s.Name)
	}
	assert.Equal(t, "A9008510BE3412CAD0FD4C00020102030002414260", codeString(a))
}

func indexOfLabel(a *Assembly, name string) int {
	for i, l := range a.Lines {
		if l.Label == name {
			return i
		}
	}
	return -1
}

func TestObjectBlocks(t *testing.T) {
	var src strings.Builder
	src.WriteString("\tORG $8000\n")
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&src, "\tFCB %d\n", i)
	}
	src.WriteString("\tEND\n")

	var obj bytes.Buffer
	w := hexfmt.NewWriter(&obj, hexfmt.MOS)
	_, err := Assemble(NewSourceString(src.String()), w, Options{Out: io.Discard})
	require.NoError(t, err)

	expected := ";188000010203040506070809" + "0A0B0C0D0E0F101112131415161718" + "01C4\n" +
		";068018191A1B1C1D1E0143\n" +
		";0000020002\n"
	assert.Equal(t, expected, obj.String())
	assert.Equal(t, 2, w.Blocks())
}

func TestSymbolTableOverflow(t *testing.T) {
	var obj bytes.Buffer
	w := hexfmt.NewWriter(&obj, hexfmt.MOS)
	a, err := Assemble(NewSourceString("L1\tNOP\nL2\tNOP\nL3\tNOP"), w,
		Options{MaxSymbols: 2, Out: io.Discard})
	assert.ErrorIs(t, err, ErrSymbolTableFull)
	assert.Empty(t, obj.String())
	assert.Len(t, a.Symbols, 2)
}

func TestIdempotence(t *testing.T) {
	asm := "\tORG $C000\nSTART\tLDA #\"A\n\tJSR OUT\n\tBNE START\nOUT\tRTS\n\tTEX 'DONE'\n"
	run := func() string {
		var obj bytes.Buffer
		_, err := Assemble(NewSourceString(asm), hexfmt.NewWriter(&obj, hexfmt.Intel), Options{Out: io.Discard})
		require.NoError(t, err)
		return obj.String()
	}
	assert.Equal(t, run(), run())
}

func TestUnusedWarnings(t *testing.T) {
	a, err := assemble("L1\tNOP\n\tJMP L1\nL2\tNOP")
	require.NoError(t, err)
	assert.Equal(t, []string{"L2: unused label"}, a.Warnings)
	assert.Equal(t, 1, a.Symbols[0].References)

	// Labels used only by ORG or RMB are referenced too.
	a, err = assemble("N\tEQU 3\n\tRMB N\n\tNOP")
	require.NoError(t, err)
	assert.Empty(t, a.Warnings)
	assert.Equal(t, 1, a.Symbols[0].References)

	a, err = assemble("BASE\tEQU $0300\n\tORG BASE\n\tNOP")
	require.NoError(t, err)
	assert.Empty(t, a.Warnings)
	assert.Equal(t, 1, a.Symbols[0].References)
	assert.Equal(t, 0x0300, a.Lines[2].Address)
}

func TestVerbose(t *testing.T) {
	var out bytes.Buffer
	_, err := Assemble(NewSourceString("START\tLDA #1\n\tFCB 1,2,3,4,5"), nil, Options{Verbose: true, Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "-- Pass 1 --")
	assert.Contains(t, out.String(), "-- Pass 2 --")
	assert.Contains(t, out.String(), "LABEL START")
	assert.Contains(t, out.String(), "0002-*  01 02 03")
}

func TestSourceMap(t *testing.T) {
	a, err := assemble("\tORG $1000\nSTART\tNOP\n; comment\n\tJMP START")
	require.NoError(t, err)

	m := a.SourceMap()
	assert.Equal(t, 2, m.Search(0x1000))
	assert.Equal(t, 4, m.Search(0x1001))
	assert.Equal(t, -1, m.Search(0x1002))

	var b bytes.Buffer
	_, err = m.WriteTo(&b)
	require.NoError(t, err)
	assert.Contains(t, b.String(), `"Address":4097`)
}
