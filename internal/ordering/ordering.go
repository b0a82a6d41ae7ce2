// Package ordering computes fractional sort keys for tasks within a bucket.
//
// Keys are float64 values spaced Step apart on append. Inserting between two
// neighbours takes their midpoint, so no sibling ever has to be renumbered.
// Repeated inserts at the same point shrink the gap without bound; Rebalance
// produces a fresh evenly spaced sequence when a caller wants one.
package ordering

import (
	"math"
	"slices"

	"github.com/rogersnm/kanban/internal/model"
)

const (
	Step    = 1000.0
	Epsilon = 0.001
)

// Append returns a key that sorts after every key in orders.
func Append(orders []float64) float64 {
	if len(orders) == 0 {
		return Step
	}
	return slices.Max(orders) + Step
}

// InsertAfter returns a key that sorts after `after` and before the next
// larger key in orders, if any.
func InsertAfter(after float64, orders []float64) float64 {
	next, found := 0.0, false
	for _, o := range orders {
		if o > after && (!found || o < next) {
			next, found = o, true
		}
	}
	candidate := after + Step
	if found {
		candidate = (after + next) / 2
	}
	return Resolve(candidate, orders)
}

// Valid reports whether o can be used as a key. NaN and infinities cannot.
func Valid(o float64) bool {
	return !math.IsNaN(o) && !math.IsInf(o, 0)
}

// Resolve nudges candidate upward by Epsilon until it collides with no key
// in orders. Past the magnitude where Epsilon no longer changes a float64
// it steps to the next representable value instead.
func Resolve(candidate float64, orders []float64) float64 {
	taken := make(map[float64]struct{}, len(orders))
	for _, o := range orders {
		taken[o] = struct{}{}
	}
	for {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		next := candidate + Epsilon
		if next == candidate {
			next = math.Nextafter(candidate, math.Inf(1))
		}
		if next == candidate {
			// +Inf has nowhere left to go
			return candidate
		}
		candidate = next
	}
}

// Rebalance returns n evenly spaced keys: Step, 2*Step, ...
func Rebalance(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Step * float64(i+1)
	}
	return out
}

// BucketOrders collects the keys of tasks in bucket, skipping excludeID.
func BucketOrders(tasks []model.Task, bucket, excludeID string) []float64 {
	var orders []float64
	for i := range tasks {
		if tasks[i].Bucket != bucket || (excludeID != "" && tasks[i].ID == excludeID) {
			continue
		}
		orders = append(orders, tasks[i].Order)
	}
	return orders
}
