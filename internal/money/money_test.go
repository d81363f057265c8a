package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/common"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1.234,56", want: "1234.56"},
		{input: "€ 1.234,56", want: "1234.56"},
		{input: "EUR 12,50", want: "12.5"},
		{input: "1.234.567,8", want: "1234567.8"},
		{input: "-45,10", want: "-45.1"},
		{input: "1234.56", want: "1234.56"},
		{input: "0.5", want: "0.5"},
		{input: "  99 ", want: "99"},
		{input: "1 234,00", want: "1234"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseStabilizes(t *testing.T) {
	inputs := []string{"1.234,56", "0,01", "-7,25", "1000", "3.14159", "12.345.678,90"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input)
			require.NoError(t, err)

			second, err := Parse(first.String())
			require.NoError(t, err)
			assert.True(t, first.Equal(second))

			third, err := Parse(second.String())
			require.NoError(t, err)
			assert.Equal(t, second.String(), third.String())
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "€"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, common.ErrValidation, input)
	}
}

func TestParseOrZero(t *testing.T) {
	assert.True(t, ParseOrZero("").IsZero())
	assert.True(t, ParseOrZero("n.v.t.").IsZero())
	assert.Equal(t, "12.5", ParseOrZero("12,50").String())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "1234.56", want: "1.234,56"},
		{input: "0", want: "0,00"},
		{input: "-1234567.891", want: "-1.234.567,89"},
		{input: "999.5", want: "999,50"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("48213.07")
	parsed, err := Parse(FormatEuro(d))
	require.NoError(t, err)
	assert.True(t, d.Equal(parsed))
}
