package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatToBrazilianE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11999990000", "+5511999990000"},
		{"(11) 99999-0000", "+5511999990000"},
		{"+55 11 99999-0000", "+5511999990000"},
		{"5511999990000", "+5511999990000"},
		{"1133334444", "+551133334444"},
		// DDD 55 without country code must not be stripped
		{"5599999-0000", "+5555999990000"},
	}
	for _, tt := range tests {
		got, err := FormatToBrazilianE164(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestFormatToBrazilianE164_Invalid(t *testing.T) {
	for _, in := range []string{"", "123", "5511999990000123456"} {
		_, err := FormatToBrazilianE164(in)
		assert.Error(t, err, "input %q", in)
	}
}
