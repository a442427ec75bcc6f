// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between assembled code addresses
// and source code line numbers.
type SourceMap struct {
	Lines []SourceLine
}

// A SourceLine represents a mapping between a machine code address and
// the source code line used to generate it.
type SourceLine struct {
	Address int // Machine code address
	Line    int // Source code line number
}

// SourceMap builds a source map for every line that generated code.
func (a *Assembly) SourceMap() *SourceMap {
	s := &SourceMap{}
	for _, l := range a.Lines {
		if len(l.Bytes) > 0 {
			s.Lines = append(s.Lines, SourceLine{Address: l.Address, Line: l.Number})
		}
	}
	sort.SliceStable(s.Lines, func(i, j int) bool {
		return s.Lines[i].Address < s.Lines[j].Address
	})
	return s
}

// Search searches the source map for a mapping with the requested
// address. It returns -1 if there is none.
func (s *SourceMap) Search(addr int) (line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Lines[i].Line
	}
	return -1
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
