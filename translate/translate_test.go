package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert.Equal(t, "undefined label", From("undefined label"))
	assert.Equal(t, "ABC: unused label", From("%s: unused label", "ABC"))
	assert.Equal(t, "6502 ASSEMBLER Rev.2.1", From("6502 ASSEMBLER Rev.%s", "2.1"))
}
