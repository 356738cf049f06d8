package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Puntos-api/internal/application/auth"
)

// Política: 8-20 caracteres con mayúscula, minúscula, dígito y símbolo.
func TestValidPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"válida mínima", "Aa1!aaaa", true},
		{"válida con varios símbolos", "Camp.us-2026!", true},
		{"muy corta", "Aa1!aaa", false},
		{"muy larga", "Aa1!aaaaaaaaaaaaaaaaa", false},
		{"sin mayúscula", "aa1!aaaa", false},
		{"sin minúscula", "AA1!AAAA", false},
		{"sin dígito", "Aa!!aaaa", false},
		{"sin símbolo", "Aa1aaaaa", false},
		{"vacía", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, auth.ValidPassword(tc.password))
		})
	}
}
