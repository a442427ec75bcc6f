// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beevik/as6502/cpu"
)

func TestDisassemble(t *testing.T) {
	m := cpu.NewFlatMemory()
	m.StoreBytes(0x1000, []byte{
		0xa9, 0x41,
		0xa5, 0x10,
		0xbd, 0x00, 0x20,
		0xb1, 0x80,
		0x6c, 0x34, 0x12,
		0xd0, 0xfd,
		0x0a,
		0x02,
	})

	expected := []struct {
		line string
		next uint16
	}{
		{"LDA #$41", 0x1002},
		{"LDA $10", 0x1004},
		{"LDA $2000,X", 0x1007},
		{"LDA ($80),Y", 0x1009},
		{"JMP ($1234)", 0x100c},
		{"BNE $100B", 0x100e},
		{"ASL", 0x100f},
		{"FCB $02", 0x1010},
	}

	addr := uint16(0x1000)
	for _, e := range expected {
		line, next := Disassemble(m, addr)
		assert.Equal(t, e.line, line)
		assert.Equal(t, e.next, next)
		addr = next
	}

	assert.Equal(t, []byte{0xbd, 0x00, 0x20}, Code(m, 0x1004))
	assert.Equal(t, []byte{0x02}, Code(m, 0x100f))
}
