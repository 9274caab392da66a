// Package reporting holds the read-side transformations behind the history,
// latest-rate and summary endpoints. Every function is pure: callers load the
// records and pass them in.
package reporting

import (
	"sort"
	"strings"
	"time"
)

// PricePoint is a timestamped price observation of one coin.
type PricePoint interface {
	CoinSymbol() string
	ObservedAt() time.Time
}

// RateSnapshot is a timestamped exchange-rate observation of a currency pair.
type RateSnapshot interface {
	Pair() (base, target string)
	ObservedAt() time.Time
}

// Count is one group of a group-by summary.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PriceHistory returns the items for coin (case-insensitive) observed at or
// after now minus days, ordered by observation time ascending. Items with equal
// timestamps keep their input order.
func PriceHistory[T PricePoint](items []T, coin string, days int, now time.Time) []T {
	since := now.AddDate(0, 0, -days)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !strings.EqualFold(it.CoinSymbol(), coin) {
			continue
		}
		if it.ObservedAt().Before(since) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ObservedAt().Before(out[j].ObservedAt())
	})
	return out
}

// LatestRates returns one snapshot per (base, target) pair: the one with the
// greatest timestamp. On a tie the first one in input order wins. The result
// is sorted by base, then target.
func LatestRates[T RateSnapshot](items []T) []T {
	type pair struct{ base, target string }
	latest := make(map[pair]T)
	order := make([]pair, 0)
	for _, it := range items {
		b, t := it.Pair()
		k := pair{b, t}
		cur, ok := latest[k]
		if !ok {
			latest[k] = it
			order = append(order, k)
			continue
		}
		if it.ObservedAt().After(cur.ObservedAt()) {
			latest[k] = it
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].base != order[j].base {
			return order[i].base < order[j].base
		}
		return order[i].target < order[j].target
	})
	out := make([]T, len(order))
	for i, k := range order {
		out[i] = latest[k]
	}
	return out
}

// CountBy groups items by key and returns the counts ordered by count
// descending, then key ascending.
func CountBy[T any](items []T, key func(T) string) []Count {
	counts := make(map[string]int)
	for _, it := range items {
		counts[key(it)]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Since returns the items whose timestamp is at or after since, in input order.
func Since[T any](items []T, at func(T) time.Time, since time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !at(it).Before(since) {
			out = append(out, it)
		}
	}
	return out
}
