package reconciler

import "tradeSync/internal/domain"

// Page returns page index (zero based) of size trades from a merged snapshot.
// A non-positive size returns the whole list; an out-of-range index returns an
// empty slice.
func Page(trades []domain.Trade, size, index int) []domain.Trade {
	if size <= 0 {
		return trades
	}
	if index < 0 || len(trades) == 0 || index > (len(trades)-1)/size {
		return []domain.Trade{}
	}
	start := index * size
	end := len(trades)
	if size < end-start {
		end = start + size
	}
	return trades[start:end]
}

// PageCount returns how many pages of size the list spans.
func PageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}
