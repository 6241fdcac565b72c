package folio

import (
	"slices"
	"testing"

	"github.com/foliotrack/folio/date"
)

// histories builds a price book from symbol -> day -> close literals.
func histories(t *testing.T, prices map[string]map[string]float64) map[string]date.History[float64] {
	t.Helper()
	out := make(map[string]date.History[float64], len(prices))
	for symbol, series := range prices {
		var h date.History[float64]
		for day, close := range series {
			h.Append(date.MustParse(day), close)
		}
		out[symbol] = h
	}
	return out
}

func TestPriceBook_Close(t *testing.T) {
	book := NewPriceBook(histories(t, map[string]map[string]float64{
		"AAPL": {"2024-01-02": 185.5},
	}))

	if v, ok := book.Close("AAPL", date.MustParse("2024-01-02")); !ok || v != 185.5 {
		t.Errorf("Close = %v, %v; want 185.5, true", v, ok)
	}
	if _, ok := book.Close("AAPL", date.MustParse("2024-01-03")); ok {
		t.Error("Close on an absent day must report false")
	}
	if _, ok := book.Close("MSFT", date.MustParse("2024-01-02")); ok {
		t.Error("Close on an unknown symbol must report false")
	}
}

func TestPriceBook_FullCoverageDates_AllOrNothing(t *testing.T) {
	// A is priced every day; B only on half of them. Both are active from
	// the start, so only days where B is also priced survive.
	ledger := NewLedger(
		NewBuy("1", "A", d(1), d(10), date.MustParse("2024-01-01")),
		NewBuy("2", "B", d(1), d(20), date.MustParse("2024-01-01")),
	)
	book := NewPriceBook(histories(t, map[string]map[string]float64{
		"A": {"2024-01-02": 1, "2024-01-03": 1, "2024-01-04": 1, "2024-01-05": 1},
		"B": {"2024-01-03": 2, "2024-01-05": 2},
	}))

	got := book.FullCoverageDates(ledger, date.Range{
		From: date.MustParse("2024-01-01"),
		To:   date.MustParse("2024-01-31"),
	})
	want := []date.Date{date.MustParse("2024-01-03"), date.MustParse("2024-01-05")}
	if !slices.Equal(got, want) {
		t.Errorf("FullCoverageDates = %v, want %v", got, want)
	}
}

func TestPriceBook_FullCoverageDates_ActiveSetIsPerDate(t *testing.T) {
	// B only becomes active on Jan 4. Before that, days priced by A alone
	// are fully covered; from Jan 4 on, B's missing prices drop the day.
	ledger := NewLedger(
		NewBuy("1", "A", d(1), d(10), date.MustParse("2024-01-01")),
		NewBuy("2", "B", d(1), d(20), date.MustParse("2024-01-04")),
	)
	book := NewPriceBook(histories(t, map[string]map[string]float64{
		"A": {"2024-01-02": 1, "2024-01-03": 1, "2024-01-04": 1, "2024-01-05": 1},
		"B": {"2024-01-05": 2},
	}))

	got := book.FullCoverageDates(ledger, date.Range{
		From: date.MustParse("2024-01-01"),
		To:   date.MustParse("2024-01-31"),
	})
	want := []date.Date{
		date.MustParse("2024-01-02"),
		date.MustParse("2024-01-03"),
		date.MustParse("2024-01-05"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("FullCoverageDates = %v, want %v", got, want)
	}
}

func TestPriceBook_FullCoverageDates_RestrictsToRange(t *testing.T) {
	ledger := NewLedger(NewBuy("1", "A", d(1), d(10), date.MustParse("2023-01-01")))
	book := NewPriceBook(histories(t, map[string]map[string]float64{
		"A": {"2023-12-29": 1, "2024-01-02": 1, "2024-02-15": 1},
	}))

	got := book.FullCoverageDates(ledger, date.Range{
		From: date.MustParse("2024-01-01"),
		To:   date.MustParse("2024-01-31"),
	})
	want := []date.Date{date.MustParse("2024-01-02")}
	if !slices.Equal(got, want) {
		t.Errorf("FullCoverageDates = %v, want %v", got, want)
	}
}

func TestPriceBook_FullCoverageDates_Empty(t *testing.T) {
	ledger := NewLedger(NewBuy("1", "A", d(1), d(10), date.MustParse("2024-01-01")))
	book := NewPriceBook(nil)

	got := book.FullCoverageDates(ledger, date.Range{
		From: date.MustParse("2024-01-01"),
		To:   date.MustParse("2024-01-31"),
	})
	if len(got) != 0 {
		t.Errorf("FullCoverageDates = %v, want empty", got)
	}
}
