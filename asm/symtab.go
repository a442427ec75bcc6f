// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// DefaultMaxSymbols is the default capacity of a symbol table.
const DefaultMaxSymbols = 499

// A Symbol is a named value defined by a label.
type Symbol struct {
	Name       string // label name, at most 12 characters
	Value      int    // address or equated value
	References int    // number of pass-2 lookups
}

// A SymbolTable maps label names to values. Symbols are kept in the
// order in which they were inserted.
type SymbolTable struct {
	symbols  []Symbol
	index    map[string]int
	capacity int
}

// NewSymbolTable creates a symbol table holding at most capacity
// symbols. A capacity of zero or less selects DefaultMaxSymbols.
func NewSymbolTable(capacity int) *SymbolTable {
	if capacity <= 0 {
		capacity = DefaultMaxSymbols
	}
	return &SymbolTable{
		index:    make(map[string]int),
		capacity: capacity,
	}
}

// Insert adds a symbol to the table. It returns ErrSymbolTableFull if
// the table is at capacity and ErrDuplicateLabel if the name is already
// defined. The table is not modified when an error is returned.
func (t *SymbolTable) Insert(name string, value int) error {
	if len(t.symbols) >= t.capacity {
		return ErrSymbolTableFull
	}
	if _, ok := t.index[name]; ok {
		return ErrDuplicateLabel
	}
	t.index[name] = len(t.symbols)
	t.symbols = append(t.symbols, Symbol{Name: name, Value: value})
	return nil
}

// Lookup returns the symbol with the requested name. If countRef is
// true, the symbol's reference count is incremented.
func (t *SymbolTable) Lookup(name string, countRef bool) (Symbol, bool) {
	i, ok := t.index[name]
	if !ok {
		return Symbol{}, false
	}
	if countRef {
		t.symbols[i].References++
	}
	return t.symbols[i], true
}

// Set changes the value of an existing symbol. It returns false if the
// symbol does not exist.
func (t *SymbolTable) Set(name string, value int) bool {
	i, ok := t.index[name]
	if ok {
		t.symbols[i].Value = value
	}
	return ok
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Symbols returns a copy of all symbols in insertion order.
func (t *SymbolTable) Symbols() []Symbol {
	return append([]Symbol(nil), t.symbols...)
}

// Unused returns the symbols that were never referenced.
func (t *SymbolTable) Unused() []Symbol {
	var unused []Symbol
	for _, s := range t.symbols {
		if s.References == 0 {
			unused = append(unused, s)
		}
	}
	return unused
}

// ValidateLabel checks a label name before it is inserted into a symbol
// table.
func ValidateLabel(name string) error {
	if name == "" {
		return ErrLabelChar
	}
	if decimal(name[0]) {
		return ErrLabelDigit
	}
	for i := 0; i < len(name); i++ {
		if !labelChar(name[i]) {
			return ErrLabelChar
		}
	}
	switch strings.ToUpper(name) {
	case "A", "X", "Y":
		return ErrLabelReserved
	}
	return nil
}
