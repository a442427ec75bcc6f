// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hexfmt reads and writes checksummed hex object records in the
// MOS Technology, Motorola S-Record and Intel hex dialects.
package hexfmt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/as6502/translate"
	"github.com/beevik/prefixtree/v2"
)

var f = translate.From

// Errors returned by the hexfmt package.
var (
	ErrUnknownDialect = errors.New(f("unknown hex dialect"))
	ErrSyntax         = errors.New(f("malformed hex record"))
	ErrChecksum       = errors.New(f("hex record checksum mismatch"))
)

// A Dialect selects the layout of hex object records.
type Dialect byte

// Supported dialects.
const (
	MOS     Dialect = iota // MOS Technology hex, the default
	SRecord                // Motorola S-Record
	Intel                  // Intel hex
)

var dialectName = []string{
	"MOS",
	"SRecord",
	"Intel",
}

func (d Dialect) String() string {
	if int(d) < len(dialectName) {
		return dialectName[d]
	}
	return "???"
}

var dialectTree = prefixtree.New[Dialect]()

func init() {
	dialectTree.Add("mos", MOS)
	dialectTree.Add("srecord", SRecord)
	dialectTree.Add("motorola", SRecord)
	dialectTree.Add("intel", Intel)
}

// ParseDialect returns the dialect named by s or by any unambiguous
// prefix of its name.
func ParseDialect(s string) (Dialect, error) {
	d, err := dialectTree.FindValue(strings.ToLower(s))
	if err != nil {
		return MOS, fmt.Errorf("%w '%s': %v", ErrUnknownDialect, s, err)
	}
	return d, nil
}
