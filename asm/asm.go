// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass 6502 assembler.
package asm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/as6502/cpu"
)

// Version is the assembler revision reported in the summary line.
const Version = "2.1"

// An ObjectWriter receives the code generated during pass 2.
type ObjectWriter interface {
	// PutByte appends a byte to the current block of object code.
	PutByte(b byte) error

	// SetAddress flushes the current block and starts the next one at
	// the requested address.
	SetAddress(addr uint16) error

	// End flushes the current block and terminates the object stream.
	End() error
}

// Options control the behavior of the Assemble function.
type Options struct {
	Base       int       // initial address counter of both passes
	MaxSymbols int       // symbol table capacity; 0 selects the default
	Verbose    bool      // trace both passes to Out
	Out        io.Writer // verbose output; defaults to os.Stdout
}

// A Line describes one assembled source line.
type Line struct {
	Fields
	Number   int    // 1-based line number
	Text     string // raw source text
	Address  int    // address of the line's first byte
	Equ      bool   // line is an EQU directive binding a label
	EquValue int    // equated value when Equ is set
	Bytes    []byte // generated code
	Filler   []int  // offsets of placeholder bytes in Bytes
	Cycles   string // cycle count annotation
}

// Assembly contains the results of assembling a source.
type Assembly struct {
	Lines    []Line       // pass 2 line records
	Symbols  []Symbol     // symbols in definition order
	Errors   []*LineError // errors from both passes
	Warnings []string     // non-fatal warnings
	Size     int          // number of code bytes generated
}

// ErrorCount returns the number of errors encountered.
func (a *Assembly) ErrorCount() int {
	return len(a.Errors)
}

// Per-line results of pass 1, used to drive pass 2.
type passRecord struct {
	addr     int  // address of the line
	next     int  // address of the following line
	size     int  // number of code bytes
	narrowed bool // operand was narrowed to zero page
	defined  bool // line's label was inserted into the symbol table
}

// lineState holds the state of the line being assembled.
type lineState struct {
	index    int      // 0-based line index
	number   int      // 1-based line number
	text     string   // raw source text
	fields   Fields   // scanned fields
	addr     int      // address of the line
	next     int      // address of the following line, or -1
	mode     cpu.Mode // addressing mode of an instruction
	bytes    []byte   // generated code
	filler   []int    // offsets of placeholder bytes in bytes
	cycles   string   // cycle count annotation
	narrowed bool     // operand was narrowed to zero page
	defined  bool     // label was inserted into the symbol table
	equ      bool     // EQU directive with a bound label
	equValue int      // value bound by EQU
}

func (ls *lineState) nextAddr() int {
	if ls.next >= 0 {
		return ls.next
	}
	return ls.addr + len(ls.bytes)
}

// Append n placeholder bytes. Placeholders stand in for code that could
// not be generated, so the line keeps the size it had in pass 1.
func (ls *lineState) pad(n int) {
	for range n {
		ls.filler = append(ls.filler, len(ls.bytes))
		ls.bytes = append(ls.bytes, 0xff)
	}
}

// Resize the line's code to n bytes, padding with placeholders.
func (ls *lineState) fit(n int) {
	if len(ls.bytes) <= n {
		ls.pad(n - len(ls.bytes))
		return
	}
	ls.bytes = ls.bytes[:n]
	ls.filler = slices.DeleteFunc(ls.filler, func(i int) bool { return i >= n })
}

// Replace the line's code with placeholders of the same size.
func (ls *lineState) invalidate() {
	n := len(ls.bytes)
	ls.bytes, ls.filler = ls.bytes[:0], ls.filler[:0]
	ls.pad(n)
}

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	src     *Source             // restartable line source
	instSet *cpu.InstructionSet // instruction table
	symbols *SymbolTable        // labels collected in pass 1
	obj     ObjectWriter        // object code receiver, may be nil
	objErr  error               // first object output error
	base    int                 // initial address counter
	pass    int                 // current pass, 1 or 2
	addr    int                 // address counter
	records []passRecord        // pass 1 results, one per line
	line    *lineState          // line being assembled
	result  *Assembly           // assembly under construction
	out     io.Writer           // output used for verbose output
	verbose bool                // verbose output
}

// Assemble runs both passes over the source. Pass 2 sends generated code
// to obj, which may be nil. The returned Assembly is complete even when
// some lines had errors, in which case ErrAssemblyFailed is returned. If
// the symbol table overflows, assembly stops in pass 1 and the returned
// error wraps ErrSymbolTableFull.
func Assemble(src *Source, obj ObjectWriter, opts Options) (*Assembly, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		src:     src,
		instSet: cpu.GetInstructionSet(),
		symbols: NewSymbolTable(opts.MaxSymbols),
		obj:     obj,
		base:    opts.Base,
		records: make([]passRecord, src.Len()),
		result:  &Assembly{},
		out:     out,
		verbose: opts.Verbose,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).pass1,       // Collect labels and line sizes
		(*assembler).pass2,       // Generate and emit code
		(*assembler).checkUnused, // Warn about unreferenced labels
	}

	for _, step := range steps {
		if err := step(a); err != nil {
			a.result.Symbols = a.symbols.Symbols()
			return a.result, err
		}
	}

	a.result.Symbols = a.symbols.Symbols()
	if a.result.ErrorCount() > 0 {
		return a.result, ErrAssemblyFailed
	}
	return a.result, nil
}

// AssembleReader buffers source text from r and assembles it.
func AssembleReader(r io.Reader, obj ObjectWriter, opts Options) (*Assembly, error) {
	src, err := NewSource(r)
	if err != nil {
		return nil, err
	}
	return Assemble(src, obj, opts)
}

// Pass 1 defines labels and computes the address and size of each line.
func (a *assembler) pass1() error {
	a.logSection("Pass 1")
	a.pass, a.addr = 1, a.base

	for i := 0; i < a.src.Len(); i++ {
		ls, err := a.assembleLine(i)
		if err != nil {
			return err
		}

		a.records[i] = passRecord{
			addr:     ls.addr,
			next:     ls.nextAddr(),
			size:     len(ls.bytes),
			narrowed: ls.narrowed,
			defined:  ls.defined,
		}
		a.addr = a.records[i].next
	}
	return nil
}

// Pass 2 regenerates each line's code, emits it, and records the line
// for the listing. The address counter follows the addresses computed
// in pass 1.
func (a *assembler) pass2() error {
	a.logSection("Pass 2")
	a.pass, a.addr = 2, a.base
	a.setObjectAddress(a.base)

	for i := 0; i < a.src.Len(); i++ {
		ls, err := a.assembleLine(i)
		if err != nil {
			return err
		}

		rec := a.records[i]
		ls.fit(rec.size)
		if ls.addr <= 0xffff {
			for _, b := range ls.bytes {
				a.putByte(b)
			}
		}
		a.result.Size += len(ls.bytes)

		a.result.Lines = append(a.result.Lines, Line{
			Fields:   ls.fields,
			Number:   ls.number,
			Text:     ls.text,
			Address:  ls.addr,
			Equ:      ls.equ,
			EquValue: ls.equValue,
			Bytes:    ls.bytes,
			Filler:   ls.filler,
			Cycles:   ls.cycles,
		})
		a.addr = rec.next
	}

	if a.obj != nil && a.objErr == nil {
		a.objErr = a.obj.End()
	}
	return a.objErr
}

func (a *assembler) checkUnused() error {
	for _, s := range a.symbols.Unused() {
		a.addWarning(f("%s: unused label", s.Name))
	}
	return nil
}

// Assemble a single source line in the current pass. The only error
// returned is a fatal symbol table overflow.
func (a *assembler) assembleLine(i int) (*lineState, error) {
	text := a.src.Line(i)
	ls := &lineState{
		index:  i,
		number: i + 1,
		text:   text,
		addr:   a.addr,
		next:   -1,
	}
	a.line = ls

	if len(text) > MaxLine {
		text = text[:MaxLine]
		if a.pass == 1 {
			a.addWarning(f("line %s truncated at %d characters", strconv.Itoa(ls.number), MaxLine))
		}
	}

	ls.fields = ScanLine(text)
	if a.pass == 1 && ls.fields.Label != "" {
		if ls.fields.LabelTruncated {
			a.addWarning(f("%s: label truncated at %d characters", ls.fields.Label, MaxLabel))
		}
		if err := a.defineLabel(ls); err != nil {
			return ls, err
		}
	}

	if ls.fields.Mnemonic != "" {
		a.assembleMnemonic(ls)
		if a.addr > 0xffff && a.pass == 2 {
			a.addError(ErrAddressBeyond)
			ls.invalidate()
		}
	}

	a.logLine(ls)
	return ls, nil
}

// Insert the line's label into the symbol table at the current address.
func (a *assembler) defineLabel(ls *lineState) error {
	name := ls.fields.Label
	if err := ValidateLabel(name); err != nil {
		a.addError(err)
		return nil
	}

	err := a.symbols.Insert(name, ls.addr)
	switch {
	case errors.Is(err, ErrSymbolTableFull):
		return a.addError(err)
	case err != nil:
		a.addError(err)
	default:
		ls.defined = true
		a.log("LABEL %-12s = $%04X", name, ls.addr)
	}
	return nil
}

func (a *assembler) assembleMnemonic(ls *lineState) {
	name := strings.ToUpper(ls.fields.Mnemonic)
	if op, ok := pseudoOps[name]; ok {
		op.fn(a, ls, op.param)
		return
	}
	if inst := a.instSet.Lookup(name); inst != nil {
		a.assembleInstruction(ls, inst)
		return
	}
	a.pass2Error(ErrUnknownMnemonic)
}

func (a *assembler) evaluator(addr int) *evaluator {
	return &evaluator{
		symbols:   a.symbols,
		addr:      addr,
		countRefs: a.pass == 2,
	}
}

func (a *assembler) putByte(b byte) {
	if a.obj != nil && a.objErr == nil {
		a.objErr = a.obj.PutByte(b)
	}
}

func (a *assembler) setObjectAddress(addr int) {
	if a.obj != nil && a.objErr == nil {
		a.objErr = a.obj.SetAddress(uint16(addr))
	}
}

// Record an error against the current line.
func (a *assembler) addError(err error) *LineError {
	e := &LineError{Line: a.line.number, Text: a.line.text, Err: err}
	a.result.Errors = append(a.result.Errors, e)
	if a.verbose {
		fmt.Fprintln(a.out, e.Error())
		fmt.Fprintln(a.out, e.Text)
	}
	return e
}

// Record an error against the current line if this is pass 2.
func (a *assembler) pass2Error(err error) {
	if a.pass == 2 {
		a.addError(err)
	}
}

func (a *assembler) addWarning(msg string) {
	a.result.Warnings = append(a.result.Warnings, msg)
	a.log("%s", f("Warning: %s", msg))
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log an assembled line and its generated code.
func (a *assembler) logLine(ls *lineState) {
	if !a.verbose {
		return
	}

	var detail string
	switch {
	case ls.fields.Mnemonic == "":
	case len(ls.bytes) > 3:
		detail = fmt.Sprintf("%04X Len:%d", ls.addr, len(ls.bytes))
	case ls.cycles != "":
		detail = fmt.Sprintf("%04X %-8s %s", ls.addr, byteString(ls.bytes), ls.mode)
	default:
		detail = fmt.Sprintf("%04X %s", ls.addr, byteString(ls.bytes))
	}
	fmt.Fprintf(a.out, "%-4d | %-20s | %s\n", ls.number, detail, ls.text)

	if a.pass == 2 && len(ls.bytes) > 3 {
		a.logBytes(ls.addr, ls.bytes)
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *assembler) logBytes(addr int, b []byte) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 3 {
			j := min(i+3, n)
			a.log("%04X-*  %s", addr+i, byteString(b[i:j]))
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
