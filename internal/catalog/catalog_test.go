package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QFinUWA/QFinProject2/internal/common"
)

func TestNew_TradeFeeRequiresFeeType(t *testing.T) {
	_, err := New("UEC", 0.1, func(p *Product) { fee := 0.5; p.TradeFee = &fee })
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestNew_ValidTradeFee(t *testing.T) {
	p, err := New("UEC", 0.1, WithTradeFee(0.5, common.SetFee))
	require.NoError(t, err)
	require.NotNil(t, p.TradeFee)
	assert.Equal(t, 0.5, *p.TradeFee)
}

func TestCatalog_LookupAndEnumerate(t *testing.T) {
	uec, err := New("UEC", 0.1)
	require.NoError(t, err)
	qfin, err := New("QFIN", 0.01, WithPosLimit(200), WithFine(200))
	require.NoError(t, err)

	cat, err := NewCatalog(uec, qfin)
	require.NoError(t, err)

	found, ok := cat.Lookup("QFIN")
	require.True(t, ok)
	require.NotNil(t, found.PosLimit)
	assert.Equal(t, int64(200), *found.PosLimit)

	_, ok = cat.Lookup("MISSING")
	assert.False(t, ok)

	assert.Equal(t, []string{"UEC", "QFIN"}, cat.Tickers())
}

func TestNewCatalog_RejectsDuplicateTicker(t *testing.T) {
	a, err := New("UEC", 0.1)
	require.NoError(t, err)
	b, err := New("UEC", 0.1)
	require.NoError(t, err)

	_, err = NewCatalog(a, b)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
