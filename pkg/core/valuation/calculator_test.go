package valuation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edinet_analyzer/pkg/core/valuation"
)

func point(year int, value, price int64) valuation.ValuePoint {
	return valuation.ValuePoint{
		Date:           time.Date(year, 3, 31, 0, 0, 0, 0, time.UTC),
		CorporateValue: decimal.NewFromInt(value),
		StockPrice:     decimal.NewFromInt(price),
	}
}

func TestCalculate(t *testing.T) {
	series := []valuation.ValuePoint{
		point(2019, 100, 90),
		point(2020, 110, 95),
		point(2021, 120, 100),
	}

	s := valuation.Calculate(series, nil)
	require.True(t, s.Available)
	assert.Equal(t, 3, s.SampleCount)

	// mean = (100+110+120)/3 = 110
	assert.True(t, s.MeanValue.Equal(decimal.NewFromInt(110)), "mean = %s", s.MeanValue)
	// sample variance = (100+0+100)/2 = 100, stddev = 10
	assert.True(t, s.StandardDeviation.Equal(decimal.NewFromInt(10)), "stddev = %s", s.StandardDeviation)
	// CoV = 10/110
	require.True(t, s.HasCoefficient)
	assert.True(t, s.CoefficientOfVariation.Equal(decimal.RequireFromString("0.0909090909")),
		"cov = %s", s.CoefficientOfVariation)

	assert.True(t, s.LatestValue.Equal(decimal.NewFromInt(120)))
	assert.True(t, s.LatestStockPrice.Equal(decimal.NewFromInt(100)))
	// avg price = (90+95+100)/3 = 95
	assert.True(t, s.AverageStockPrice.Equal(decimal.NewFromInt(95)), "avg price = %s", s.AverageStockPrice)

	// discount = 120 - 100 = 20, rate = 20/120
	assert.True(t, s.DiscountValue.Equal(decimal.NewFromInt(20)), "discount = %s", s.DiscountValue)
	require.True(t, s.HasDiscountRate)
	assert.True(t, s.DiscountRate.Equal(decimal.RequireFromString("0.1666666667")),
		"rate = %s", s.DiscountRate)

	assert.Nil(t, s.ForecastPrice)
}

func TestCalculate_EmptySeries(t *testing.T) {
	s := valuation.Calculate(nil, nil)
	assert.False(t, s.Available)
	assert.Equal(t, 0, s.SampleCount)
}

func TestCalculate_SinglePoint(t *testing.T) {
	s := valuation.Calculate([]valuation.ValuePoint{point(2021, 100, 80)}, nil)
	require.True(t, s.Available)

	// One observation: stddev defined as zero, CoV = 0/100 = 0.
	assert.True(t, s.StandardDeviation.IsZero())
	require.True(t, s.HasCoefficient)
	assert.True(t, s.CoefficientOfVariation.IsZero())
	assert.True(t, s.MeanValue.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.DiscountValue.Equal(decimal.NewFromInt(20)))
}

func TestCalculate_ZeroMean(t *testing.T) {
	// Values of -50 and 50 average to zero: no coefficient.
	series := []valuation.ValuePoint{point(2020, -50, 10), point(2021, 50, 10)}
	s := valuation.Calculate(series, nil)
	require.True(t, s.Available)
	assert.False(t, s.HasCoefficient)
}

func TestCalculate_ZeroLatestValue(t *testing.T) {
	series := []valuation.ValuePoint{point(2020, 100, 50), point(2021, 0, 50)}
	s := valuation.Calculate(series, nil)
	require.True(t, s.Available)

	// Discount value is still defined (0 - 50), the rate is not.
	assert.True(t, s.DiscountValue.Equal(decimal.NewFromInt(-50)))
	assert.False(t, s.HasDiscountRate)
}

func TestCalculate_NegativeDiscount(t *testing.T) {
	// Market price above computed value: the discount goes negative
	// instead of clamping.
	series := []valuation.ValuePoint{point(2021, 100, 130)}
	s := valuation.Calculate(series, nil)
	require.True(t, s.Available)
	assert.True(t, s.DiscountValue.Equal(decimal.NewFromInt(-30)))
	require.True(t, s.HasDiscountRate)
	assert.True(t, s.DiscountRate.Equal(decimal.RequireFromString("-0.3")), "rate = %s", s.DiscountRate)
}

func TestCalculate_ForecastPassthrough(t *testing.T) {
	forecast := decimal.NewFromInt(150)
	s := valuation.Calculate([]valuation.ValuePoint{point(2021, 100, 80)}, &forecast)
	require.NotNil(t, s.ForecastPrice)
	assert.True(t, s.ForecastPrice.Equal(forecast))
}

func TestCalculate_Idempotent(t *testing.T) {
	series := []valuation.ValuePoint{
		point(2019, 100, 90),
		point(2020, 110, 95),
		point(2021, 120, 100),
	}
	first := valuation.Calculate(series, nil)
	second := valuation.Calculate(series, nil)
	assert.Equal(t, first, second)
}
