package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestKgToTonnes(t *testing.T) {
	cases := []struct {
		kg   int64
		want string
	}{
		{22500, "22.5"},
		{1, "0.001"},
		{0, "0"},
		{-2500, "-2.5"},
		{999, "0.999"},
		{1000000, "1000"},
	}
	for _, tc := range cases {
		got := KgToTonnes(tc.kg)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"KgToTonnes(%d) = %s, want %s", tc.kg, got, tc.want)
	}
}

func TestMoneyValue(t *testing.T) {
	tonnes := decimal.RequireFromString("22.5")
	price := decimal.RequireFromString("12.50")
	require.True(t, MoneyValue(tonnes, price).Equal(decimal.RequireFromString("281.25")))

	// Sub-cent products round to 2 decimal places.
	tonnes = decimal.RequireFromString("0.333")
	price = decimal.RequireFromString("10.10")
	require.True(t, MoneyValue(tonnes, price).Equal(decimal.RequireFromString("3.36")))

	negative := decimal.RequireFromString("-2.5")
	require.True(t, MoneyValue(negative, price).Equal(decimal.RequireFromString("-25.25")))
}
