// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

// A command is the data attached to each entry of the command tree.
type command struct {
	name        string
	brief       string
	description string
	usage       string
	handler     func(*Host, cmd.Selection) error
}

var (
	cmds        *cmd.Tree
	commandList []*command
)

func addCommand(root *cmd.Tree, d cmd.CommandDescriptor, handler func(*Host, cmd.Selection) error) {
	c := &command{
		name:        d.Name,
		brief:       d.Brief,
		description: d.Description,
		usage:       d.Usage,
		handler:     handler,
	}
	d.Data = c
	root.AddCommand(d)
	commandList = append(commandList, c)
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "as6502"})
	addCommand(root, cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
	}, (*Host).cmdHelp)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "assemble",
		Brief: "Assemble a source file",
		Description: "Run the assembler on the specified file. The object" +
			" records are kept in memory and loaded into a 64K image that" +
			" can be disassembled or dumped. An optional dialect overrides" +
			" the Dialect setting.",
		Usage: "assemble <filename> [<dialect>]",
	}, (*Host).cmdAssemble)
	addCommand(root, cmd.CommandDescriptor{
		Name:        "listing",
		Brief:       "Display the assembly listing",
		Description: "Display the listing of the most recent assembly.",
		Usage:       "listing",
	}, (*Host).cmdListing)
	addCommand(root, cmd.CommandDescriptor{
		Name:        "symbols",
		Brief:       "Display the symbol table",
		Description: "Display the symbol table of the most recent assembly.",
		Usage:       "symbols",
	}, (*Host).cmdSymbols)
	addCommand(root, cmd.CommandDescriptor{
		Name:        "object",
		Brief:       "Display the object records",
		Description: "Display the hex object records of the most recent assembly.",
		Usage:       "object",
	}, (*Host).cmdObject)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "errors",
		Brief: "Display errors and warnings",
		Description: "Display the errors and warnings of the most recent" +
			" assembly, followed by the error summary.",
		Usage: "errors",
	}, (*Host).cmdErrors)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off." +
			" Addresses may be expressions using the assembled labels.",
		Usage: "disassemble [<address>] [<lines>]",
	}, (*Host).cmdDisassemble)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "memory",
		Brief: "Dump memory at address",
		Description: "Dump the contents of the assembled image starting from" +
			" the specified address. The number of bytes to dump may be" +
			" specified as an option.",
		Usage: "memory [<address>] [<bytes>]",
	}, (*Host).cmdMemory)
	addCommand(root, cmd.CommandDescriptor{
		Name:        "evaluate",
		Brief:       "Evaluate an expression",
		Description: "Evaluate an assembler expression using the assembled labels.",
		Usage:       "evaluate <expression>",
	}, (*Host).cmdEvaluate)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "save",
		Brief: "Save the object records",
		Description: "Save the object records of the most recent assembly to" +
			" a file, along with a source map file.",
		Usage: "save <filename>",
	}, (*Host).cmdSave)
	addCommand(root, cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
	}, (*Host).cmdSet)
	addCommand(root, cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
	}, (*Host).cmdQuit)

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("l", "listing")
	root.AddShortcut("m", "memory")
	root.AddShortcut("?", "help")

	cmds = root
}
