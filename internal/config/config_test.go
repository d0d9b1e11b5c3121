package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QFinUWA/QFinProject2/internal/common"
)

const sampleYAML = `
ticks: 100
output_dir: out
player: botA
products:
  - ticker: UEC
    mpv: 0.1
    pos_limit: 200
    fine: 200
  - ticker: QFIN
    mpv: 0.01
    trade_fee: 0.5
    fee_type: percentage
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesRunSpec(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	spec, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(100), spec.Ticks)
	assert.Equal(t, "botA", spec.Player)
	require.Len(t, spec.Products, 2)
	assert.Equal(t, "UEC", spec.Products[0].Ticker)
}

func TestBuildCatalog_WiresOptionsAndFeeType(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	spec, err := Load(path)
	require.NoError(t, err)

	cat, err := spec.BuildCatalog()
	require.NoError(t, err)

	uec, ok := cat.Lookup("UEC")
	require.True(t, ok)
	require.NotNil(t, uec.PosLimit)
	assert.Equal(t, int64(200), *uec.PosLimit)

	qfin, ok := cat.Lookup("QFIN")
	require.True(t, ok)
	require.NotNil(t, qfin.TradeFee)
	assert.Equal(t, common.PercentageFee, qfin.FeeType)
}

func TestBuildCatalog_RejectsUnrecognisedFeeType(t *testing.T) {
	path := writeTemp(t, `
ticks: 1
products:
  - ticker: UEC
    mpv: 0.1
    trade_fee: 0.5
    fee_type: bogus
`)
	spec, err := Load(path)
	require.NoError(t, err)

	_, err = spec.BuildCatalog()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
