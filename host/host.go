// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the assembler.
//
// Within the host it is possible to assemble a source file, display its
// listing, symbol table, object records and diagnostics, disassemble or
// dump the assembled image, evaluate expressions using the assembled
// labels, and save the object records to disk.
package host

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"

	"github.com/beevik/as6502/asm"
	"github.com/beevik/as6502/cpu"
	"github.com/beevik/as6502/disasm"
	"github.com/beevik/as6502/hexfmt"
	"github.com/beevik/as6502/translate"
)

var f = translate.From

var errQuit = errors.New("Exiting program")

// A Host holds the results of the most recent assembly and the 64K image
// its object records were loaded into.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	settings    *settings
	lastCmd     *cmd.Selection
	mem         *cpu.FlatMemory
	filename    string
	assembly    *asm.Assembly
	symbols     *asm.SymbolTable
	sourceMap   *asm.SourceMap
	object      []byte
}

// New creates a new assembler host.
func New() *Host {
	return &Host{
		settings: newSettings(),
		mem:      cpu.NewFlatMemory(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println(f("6502 ASSEMBLER Rev.%s", asm.Version))
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println(f("Command not found."))
				continue
			case err == cmd.ErrAmbiguous:
				h.println(f("Command is ambiguous."))
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		err = commandOf(c).handler(h, c)
		if err != nil {
			break
		}
	}
	h.flush()
}

func commandOf(c cmd.Selection) *command {
	return c.Command.Data.(*command)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands()
		return nil
	}

	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	cm := commandOf(s)
	h.printf("%s: %s\n\n", f("Syntax"), cm.usage)
	switch {
	case cm.description != "":
		h.printf("%s:\n%s\n\n", f("Description"), indentWrap(3, cm.description))
	case cm.brief != "":
		h.printf("%s:\n%s.\n\n", f("Description"), indentWrap(3, cm.brief))
	}
	return nil
}

func (h *Host) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	dialectName := h.settings.Dialect
	if len(c.Args) >= 2 {
		dialectName = c.Args[1]
	}
	dialect, err := hexfmt.ParseDialect(dialectName)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	file, err := os.Open(filename)
	if err != nil {
		h.println(f("Failed to open '%s': %v", filepath.Base(filename), err))
		return nil
	}
	defer file.Close()

	var obj bytes.Buffer
	opts := asm.Options{
		Base:       int(h.settings.Base),
		MaxSymbols: h.settings.MaxSymbols,
		Verbose:    h.settings.Verbose,
		Out:        h.output,
	}
	a, err := asm.AssembleReader(file, hexfmt.NewWriter(&obj, dialect), opts)
	h.flush()

	switch {
	case a == nil:
		h.println(f("Failed to read '%s': %v", filepath.Base(filename), err))
		return nil
	case err != nil && !errors.Is(err, asm.ErrAssemblyFailed):
		h.printf("%v\n", err)
		obj.Reset()
	}

	h.filename = filename
	h.assembly = a
	h.symbols = symbolTable(a.Symbols)
	h.sourceMap = a.SourceMap()
	h.object = obj.Bytes()

	h.mem = cpu.NewFlatMemory()
	if _, err := hexfmt.Load(bytes.NewReader(h.object), h.mem); err != nil {
		h.printf("%v\n", err)
	}

	if len(h.sourceMap.Lines) > 0 {
		addr := uint16(h.sourceMap.Lines[0].Address)
		h.settings.NextDisasmAddr = addr
		h.settings.NextMemDumpAddr = addr
	}

	a.WriteErrors(h.output)
	h.println(a.Summary())
	h.println(f("Assembled '%s': %d bytes, %d labels.", filepath.Base(filename), a.Size, len(a.Symbols)))
	return nil
}

// Report that nothing has been assembled yet.
func (h *Host) requireAssembly() bool {
	if h.assembly == nil {
		h.println(f("Nothing has been assembled."))
		return false
	}
	return true
}

func (h *Host) cmdListing(c cmd.Selection) error {
	if h.requireAssembly() {
		h.assembly.WriteListing(h.output)
		h.flush()
	}
	return nil
}

func (h *Host) cmdSymbols(c cmd.Selection) error {
	if h.requireAssembly() {
		h.assembly.WriteSymbols(h.output)
		h.flush()
	}
	return nil
}

func (h *Host) cmdObject(c cmd.Selection) error {
	if h.requireAssembly() {
		h.output.Write(h.object)
		h.flush()
	}
	return nil
}

func (h *Host) cmdErrors(c cmd.Selection) error {
	if h.requireAssembly() {
		h.assembly.WriteErrors(h.output)
		h.println(h.assembly.Summary())
	}
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	addr := h.settings.NextDisasmAddr
	if c.Args[0] != "$" {
		a, err := h.parseExpr(c.Args[0], addr)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		l, err := h.parseExpr(c.Args[1], addr)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdMemory(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	addr := h.settings.NextMemDumpAddr
	if c.Args[0] != "$" {
		a, err := h.parseExpr(c.Args[0], addr)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := uint16(h.settings.MemDumpBytes)
	if len(c.Args) >= 2 {
		var err error
		bytes, err = h.parseExpr(c.Args[1], addr)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	expr := strings.Join(c.Args, " ")
	v, err := h.parseExpr(expr, h.settings.NextDisasmAddr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%04X\n", v)
	return nil
}

func (h *Host) cmdSave(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	if !h.requireAssembly() {
		return nil
	}

	filename := c.Args[0]
	if err := os.WriteFile(filename, h.object, 0600); err != nil {
		h.println(f("Failed to save '%s': %v", filepath.Base(filename), err))
		return nil
	}

	ext := filepath.Ext(filename)
	mapFilename := filename[:len(filename)-len(ext)] + ".map"
	file, err := os.OpenFile(mapFilename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		h.println(f("Failed to create '%s': %v", filepath.Base(mapFilename), err))
		return nil
	}
	defer file.Close()

	if _, err := h.sourceMap.WriteTo(file); err != nil {
		h.println(f("Failed to write '%s': %v", filepath.Base(mapFilename), err))
		return nil
	}

	h.println(f("Saved '%s' to '%s'.", filepath.Base(h.filename), filepath.Base(filename)))
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println(f("Variables:"))
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c)

	default:
		key, value := c.Args[0], strings.Join(c.Args[1:], " ")

		var v any
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			h.println(f("Setting '%s' not found.", key))
			return nil
		case reflect.String:
			// The dialect is the only string setting.
			d, err := hexfmt.ParseDialect(value)
			if err != nil {
				h.printf("%v\n", err)
				return nil
			}
			v = strings.ToLower(d.String())
		case reflect.Bool:
			b, err := stringToBool(value)
			if err != nil {
				h.printf("%v\n", err)
				return nil
			}
			v = b
		default:
			n, err := asm.Eval(value, h.symbols, 0)
			if err != nil {
				h.printf("%v\n", err)
				return nil
			}
			v = n
		}

		if err := h.settings.Set(key, v); err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.println(f("Setting updated."))
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

// Evaluate an address expression using the labels of the most recent
// assembly. Negative values wrap into the 64K address space.
func (h *Host) parseExpr(expr string, addr uint16) (uint16, error) {
	v, err := asm.Eval(expr, h.symbols, int(addr))
	if err != nil {
		return 0, err
	}

	if v < 0 {
		v = 0x10000 + v
	}
	return uint16(v), nil
}

func (h *Host) disassemble(addr uint16) (str string, next uint16) {
	var line string
	line, next = disasm.Disassemble(h.mem, addr)

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(disasm.Code(h.mem, addr)), line)

	if h.sourceMap != nil {
		if n := h.sourceMap.Search(int(addr)); n > 0 {
			str += " ; " + strings.TrimSpace(h.assembly.Lines[n-1].Text)
		}
	}
	return str, next
}

func (h *Host) dumpMemory(addr0, bytes uint16) {
	if bytes == 0 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := addr0, 6, 32; a <= addr1; a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.mem.LoadByte(a)
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	a := uint16(start)
	for r := start; r < stop; r += 8 {
		addrToBuf(a, buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := h.mem.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayHelpText(c cmd.Selection) {
	h.printf("%s: %s\n", f("Syntax"), commandOf(c).usage)
}

func (h *Host) displayCommands() {
	h.printf("%s:\n", f("Commands"))
	for _, c := range commandList {
		if c.brief != "" {
			h.printf("    %-15s  %s\n", c.name, c.brief)
		}
	}
}
