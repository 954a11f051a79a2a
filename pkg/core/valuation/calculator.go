// Package valuation computes entity-level comparative statistics from
// the historical series of computed corporate values and stock prices.
package valuation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Arithmetic scale for divisions; high enough that repeated
// recomputation cannot drift at currency precision.
const calcScale = 10

// ValuePoint is one observation in an entity's series.
type ValuePoint struct {
	Date           time.Time
	CorporateValue decimal.Decimal
	StockPrice     decimal.Decimal
}

// Summary is the derived view for one entity. Individual fields carry
// their own availability flag instead of raising on zero divisions or
// empty input; Available is false only when the series is empty.
type Summary struct {
	Available bool

	LatestValue       decimal.Decimal
	MeanValue         decimal.Decimal
	StandardDeviation decimal.Decimal

	CoefficientOfVariation decimal.Decimal
	HasCoefficient         bool

	AverageStockPrice decimal.Decimal
	LatestStockPrice  decimal.Decimal

	DiscountValue   decimal.Decimal
	DiscountRate    decimal.Decimal
	HasDiscountRate bool

	// ForecastPrice is sourced externally and passed through untouched.
	ForecastPrice *decimal.Decimal

	SampleCount int
}

// Calculate produces the summary for one entity's full series, ordered
// by date with the last element as "latest". It is a pure function: the
// same series always yields the same summary.
func Calculate(series []ValuePoint, forecast *decimal.Decimal) Summary {
	n := len(series)
	if n == 0 {
		return Summary{Available: false}
	}

	latest := series[n-1]

	var valueSum, priceSum decimal.Decimal
	for _, p := range series {
		valueSum = valueSum.Add(p.CorporateValue)
		priceSum = priceSum.Add(p.StockPrice)
	}
	count := decimal.NewFromInt(int64(n))
	mean := valueSum.DivRound(count, calcScale)
	avgPrice := priceSum.DivRound(count, calcScale)

	// Sample standard deviation (n-1); defined as zero for n=1.
	stdDev := decimal.Zero
	if n > 1 {
		var squaredSum decimal.Decimal
		for _, p := range series {
			deviation := p.CorporateValue.Sub(mean)
			squaredSum = squaredSum.Add(deviation.Mul(deviation))
		}
		variance := squaredSum.DivRound(decimal.NewFromInt(int64(n-1)), calcScale)
		stdDev = sqrt(variance)
	}

	summary := Summary{
		Available:         true,
		LatestValue:       latest.CorporateValue,
		MeanValue:         mean,
		StandardDeviation: stdDev,
		AverageStockPrice: avgPrice,
		LatestStockPrice:  latest.StockPrice,
		DiscountValue:     latest.CorporateValue.Sub(latest.StockPrice),
		ForecastPrice:     forecast,
		SampleCount:       n,
	}

	if !mean.IsZero() {
		summary.CoefficientOfVariation = stdDev.DivRound(mean, calcScale)
		summary.HasCoefficient = true
	}
	if !latest.CorporateValue.IsZero() {
		summary.DiscountRate = summary.DiscountValue.DivRound(latest.CorporateValue, calcScale)
		summary.HasDiscountRate = true
	}

	return summary
}

// sqrt computes the decimal square root by Newton's method, staying in
// fixed-point arithmetic the whole way.
func sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}

	two := decimal.NewFromInt(2)
	guess := d.DivRound(two, calcScale)
	if guess.IsZero() {
		guess = d
	}
	for i := 0; i < 50; i++ {
		next := guess.Add(d.DivRound(guess, calcScale)).DivRound(two, calcScale)
		if next.Equal(guess) {
			break
		}
		guess = next
	}
	return guess
}
