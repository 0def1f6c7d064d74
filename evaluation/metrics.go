package evaluation

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

// RecallAtK is the fraction of relevant items found in the first k retrieved.
// It is 0 when relevant is empty.
func RecallAtK(retrieved, relevant []string, k int) float64 {
	want := urlSet(relevant)
	if len(want) == 0 || k < 1 {
		return 0
	}

	total := len(want)

	hits := 0
	for _, item := range topK(retrieved, k) {
		key := normalizeURL(item)
		if _, ok := want[key]; ok {
			hits++
			delete(want, key)
		}
	}
	return float64(hits) / float64(total)
}

// AveragePrecisionAtK averages precision at every rank in the first k that holds a relevant item,
// divided by min(k, |relevant|).
func AveragePrecisionAtK(retrieved, relevant []string, k int) float64 {
	want := urlSet(relevant)
	if len(want) == 0 || k < 1 {
		return 0
	}
	total := len(want)

	var sum float64
	hits := 0
	for i, item := range topK(retrieved, k) {
		key := normalizeURL(item)
		if _, ok := want[key]; !ok {
			continue
		}
		delete(want, key)
		hits++
		sum += float64(hits) / float64(i+1)
	}
	return sum / float64(min(k, total))
}

// Mean returns the arithmetic mean of values, or 0 for none.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func topK(items []string, k int) []string {
	if len(items) > k {
		return items[:k]
	}
	return items
}

func urlSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if key := normalizeURL(u); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// normalizeURL makes labels comparable regardless of case, surrounding space or a trailing slash.
func normalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}
