package kernel_test

import (
	"testing"

	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chf(t *testing.T, s string) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(decimal.RequireFromString(s), kernel.DefaultCurrency)
	require.NoError(t, err)
	return m
}

func TestNewMoney(t *testing.T) {
	t.Run("should create tagged amount", func(t *testing.T) {
		m := chf(t, "12.50")

		require.NoError(t, m.Validate())
		assert.Equal(t, "CHF", m.Currency())
		assert.Equal(t, "12.50 CHF", m.String())
	})

	t.Run("should reject bad currency code", func(t *testing.T) {
		_, err := kernel.NewMoney(decimal.Zero, "FR")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var m kernel.Money

		err := m.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrMoneyIsNotConstructed, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := chf(t, "10.00").Add(chf(t, "2.45"))

		require.NoError(t, err)
		assert.True(t, sum.IsEqual(chf(t, "12.45")))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		eur, err := kernel.NewMoney(decimal.NewFromInt(1), "EUR")
		require.NoError(t, err)

		_, err = chf(t, "1.00").Add(eur)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("mul", func(t *testing.T) {
		taxed := chf(t, "100.00").Mul(decimal.RequireFromString("0.081"))

		assert.True(t, taxed.IsEqual(chf(t, "8.10")))
	})

	t.Run("greater than", func(t *testing.T) {
		bigger, err := chf(t, "5.00").GreaterThan(chf(t, "4.99"))

		require.NoError(t, err)
		assert.True(t, bigger)
	})
}

func TestMoney_RoundCash(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.00", "10.00"},
		{"10.02", "10.00"},
		{"10.025", "10.05"},
		{"10.03", "10.05"},
		{"10.07", "10.05"},
		{"10.08", "10.10"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := chf(t, tc.in).RoundCash()

			assert.True(t, got.IsEqual(chf(t, tc.want)), "got %s", got)
		})
	}
}
