package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripQuotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"double quoted", `"smtp.example.com"`, "smtp.example.com"},
		{"single quoted", `'secret'`, "secret"},
		{"unquoted", "plain", "plain"},
		{"empty", "", ""},
		{"only opening quote", `"half`, `"half`},
		{"mismatched quotes", `"mixed'`, `"mixed'`},
		{"quoted empty", `""`, ""},
		{"inner quotes kept", `"a "b" c"`, `a "b" c`},
		{"single char", `"`, `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripQuotes(tt.in))
		})
	}
}
