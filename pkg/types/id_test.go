package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{id: "A", ok: true},
		{id: "G G", ok: true},
		{id: "node-7.b", ok: true},
		{id: "", ok: false},
		{id: "a_b", ok: false},
		{id: "a/b", ok: false},
		{id: `a\b`, ok: false},
		{id: "x{z", ok: false},
		{id: "new:one", ok: false},
		{id: "C#", ok: false},
		{id: "a|b", ok: false},
		{id: "a,b", ok: true},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if tt.ok {
			assert.NoError(t, err, tt.id)
		} else {
			assert.ErrorIs(t, err, ErrInvalidID, tt.id)
		}
	}
}
