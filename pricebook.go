package folio

import (
	"github.com/foliotrack/folio/date"
)

// PriceBook holds the daily close-price history of every symbol involved in
// one performance computation. It is built fresh from a provider response
// and discarded with the result; nothing is cached across invocations.
type PriceBook struct {
	histories map[string]date.History[float64]
}

// NewPriceBook wraps the per-symbol histories of a bulk fetch. A nil map is
// treated as empty.
func NewPriceBook(histories map[string]date.History[float64]) *PriceBook {
	if histories == nil {
		histories = make(map[string]date.History[float64])
	}
	return &PriceBook{histories: histories}
}

// Close returns the close price recorded for the symbol exactly on the
// given day. There is no interpolation and no nearest-day fallback.
func (b *PriceBook) Close(symbol string, on date.Date) (float64, bool) {
	h, ok := b.histories[symbol]
	if !ok {
		return 0, false
	}
	return h.Get(on)
}

// FullCoverageDates returns, ascending, every date within the range on
// which all symbols active in the ledger as of that date have an exact
// same-day close price.
//
// Candidate dates are the union of all dates appearing in any history. A
// candidate is dropped entirely when any active symbol lacks a same-day
// price: a partially priced date would silently omit a position and under-
// or over-state portfolio value. Dates with no active symbols survive
// vacuously; the series builder skips them.
func (b *PriceBook) FullCoverageDates(ledger *Ledger, within date.Range) []date.Date {
	histories := make([]date.History[float64], 0, len(b.histories))
	for _, h := range b.histories {
		histories = append(histories, h)
	}

	covered := make([]date.Date, 0)
	for on := range date.Iterate(histories...) {
		if !within.Contains(on) {
			continue
		}
		full := true
		for symbol := range ledger.ActiveSymbols(on) {
			if _, ok := b.Close(symbol, on); !ok {
				full = false
				break
			}
		}
		if full {
			covered = append(covered, on)
		}
	}
	return covered
}
