package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBar() PriceBar {
	return PriceBar{
		Symbol: "AAPL", TradeDate: time.Now(), Source: "yahoo",
		Open: 100, High: 105, Low: 99, Close: 102, AdjClose: 102, Volume: 1000,
	}
}

func TestPriceBarValidate_OK(t *testing.T) {
	bar := validBar()
	require.NoError(t, bar.Validate())
}

func TestPriceBarValidate_HighBelowMax(t *testing.T) {
	bar := validBar()
	bar.High = 101 // below max(open,close)=102
	err := bar.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestPriceBarValidate_LowAboveMin(t *testing.T) {
	bar := validBar()
	bar.Low = 100.5 // above min(open,close)=100
	err := bar.Validate()
	require.Error(t, err)
}

func TestPriceBarValidate_NegativeVolume(t *testing.T) {
	bar := validBar()
	bar.Volume = -1
	require.Error(t, bar.Validate())
}

func TestPriceBarValidate_NonPositivePrice(t *testing.T) {
	bar := validBar()
	bar.Open = 0
	require.Error(t, bar.Validate())
}
