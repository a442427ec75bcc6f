// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/beevik/term"

	"github.com/beevik/as6502/asm"
	"github.com/beevik/as6502/hexfmt"
	"github.com/beevik/as6502/host"
)

var (
	dialect     string
	objectFile  string
	listingFile string
	symbolFile  string
	base        string
	maxSymbols  int
	verbose     bool
	interactive bool
)

func init() {
	flag.StringVar(&dialect, "f", "mos", "object record dialect (mos, srecord, intel)")
	flag.StringVar(&objectFile, "o", "", "object file (default stdout)")
	flag.StringVar(&listingFile, "l", "", "listing file, - for stdout")
	flag.StringVar(&symbolFile, "s", "", "symbol table file, - for stdout")
	flag.StringVar(&base, "b", "0", "initial address expression")
	flag.IntVar(&maxSymbols, "n", asm.DefaultMaxSymbols, "symbol table capacity")
	flag.BoolVar(&verbose, "v", false, "trace both passes")
	flag.BoolVar(&interactive, "i", false, "start the interactive shell")
	flag.CommandLine.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: as6502 [options] [source]\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("as6502: ")
	flag.Parse()

	args := flag.Args()
	if interactive || (len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd()))) {
		h := host.New()
		h.RunCommands(os.Stdin, os.Stdout, true)
		return
	}

	d, err := hexfmt.ParseDialect(dialect)
	if err != nil {
		log.Fatalf("%v", err)
	}

	b, err := asm.Eval(base, nil, 0)
	if err != nil {
		log.Fatalf("base address '%s': %v", base, err)
	}

	var src io.Reader = os.Stdin
	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer file.Close()
		src = file
	}

	obj := create(objectFile, os.Stdout)
	defer obj.Close()

	opts := asm.Options{
		Base:       b,
		MaxSymbols: maxSymbols,
		Verbose:    verbose,
		Out:        os.Stderr,
	}
	a, err := asm.AssembleReader(src, hexfmt.NewWriter(obj, d), opts)
	if a == nil {
		log.Fatalf("%v", err)
	}
	if err != nil && !errors.Is(err, asm.ErrAssemblyFailed) {
		fmt.Fprintln(os.Stderr, err)
	}

	if listingFile != "" {
		w := create(listingFile, os.Stdout)
		a.WriteListing(w)
		w.Close()
	}
	if symbolFile != "" {
		w := create(symbolFile, os.Stdout)
		a.WriteSymbols(w)
		w.Close()
	}

	a.WriteErrors(os.Stderr)
	fmt.Fprintln(os.Stderr, a.Summary())

	if err != nil {
		obj.Close()
		os.Exit(1)
	}
}

// Create the named output file. An empty name or "-" selects def,
// which is never closed.
func create(filename string, def *os.File) io.WriteCloser {
	if filename == "" || filename == "-" {
		return nopCloser{def}
	}
	file, err := os.Create(filename)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return file
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
