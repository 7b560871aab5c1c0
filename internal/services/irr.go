package services

import (
	"math"
	"sort"

	"github.com/minhtc/folio/internal/models"
)

const (
	xirrInitialGuess  = 0.10
	xirrMaxIterations = 50
	xirrTolerance     = 1e-8

	// A rate at or below -100% has no economic meaning
	xirrMinRate = -0.9999
)

type dateFlow struct {
	amount float64
	years  float64
}

// XIRR computes the annualized money-weighted rate of return solving
// sum(cf_i / (1+r)^t_i) = 0, where t_i is the year fraction (days/365) from
// the earliest cash flow. Returns nil when the input is ill-posed or
// Newton-Raphson fails to converge safely.
func XIRR(flows []models.CashFlowItem) *float64 {
	if len(flows) < 2 {
		return nil
	}

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.Amount.IsNegative() {
			hasNeg = true
		}
		if f.Amount.IsPositive() {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return nil
	}

	sorted := make([]models.CashFlowItem, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	t0 := sorted[0].Date
	dfs := make([]dateFlow, len(sorted))
	for i, f := range sorted {
		days := f.Date.Sub(t0).Hours() / 24
		dfs[i] = dateFlow{
			amount: f.Amount.InexactFloat64(),
			years:  days / 365,
		}
	}

	return newtonSolve(dfs, xirrInitialGuess, xirrMaxIterations)
}

// newtonSolve iterates Newton-Raphson on the NPV equation from guess. Returns
// nil when a derivative or iterate degenerates, or when the iteration budget
// runs out before the step shrinks under the tolerance.
func newtonSolve(flows []dateFlow, guess float64, maxIterations int) *float64 {
	rate := guess
	for i := 0; i < maxIterations; i++ {
		f := xnpv(rate, flows)
		df := dxnpv(rate, flows)

		if df == 0 || math.IsNaN(f) || math.IsInf(f, 0) || math.IsNaN(df) || math.IsInf(df, 0) {
			return nil
		}

		next := rate - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= xirrMinRate {
			return nil
		}
		if math.Abs(next-rate) < xirrTolerance {
			return &next
		}
		rate = next
	}

	// Out of iterations; an unconverged estimate is worse than no answer
	return nil
}

// xnpv is the net present value of the flows at the given rate
func xnpv(rate float64, flows []dateFlow) float64 {
	var acc float64
	for _, f := range flows {
		acc += f.amount / math.Pow(1+rate, f.years)
	}
	return acc
}

// dxnpv is the analytic derivative of xnpv with respect to the rate
func dxnpv(rate float64, flows []dateFlow) float64 {
	var acc float64
	for _, f := range flows {
		acc += -f.years * f.amount / math.Pow(1+rate, f.years+1)
	}
	return acc
}
