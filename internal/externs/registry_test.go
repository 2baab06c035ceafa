package externs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryKnowsCoreSpecializationTable(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"eq", "zero_extend", "sign_extend", "add_bits", "append", "replicate_bits", "undefined", "add_int"} {
		assert.True(t, r.IsKnown(name), "expected %s to be registered", name)
	}
}

func TestRegistryRejectsUnknown(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IsKnown("frobnicate"))
}

func TestLookupReturnsArity(t *testing.T) {
	r := NewRegistry()
	p, ok := r.Lookup("vector_update_subrange")
	assert.True(t, ok)
	assert.Equal(t, 4, p.Arity)
}
