package folio

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/foliotrack/folio/date"
)

// ErrInvalidCredentials marks the one hard failure of the quote feed: a
// rejected API key. The series builder lets it propagate so callers can
// distinguish "bad config" from "just no data"; every other feed failure
// degrades to an empty result.
var ErrInvalidCredentials = errors.New("quote feed rejected the API credentials")

// HistoryProvider fetches bulk daily close-price histories. The returned
// map carries an entry for every requested symbol; symbols without data map
// to an empty history rather than being omitted.
type HistoryProvider interface {
	DailyHistories(ctx context.Context, symbols []string, days int) (map[string]date.History[float64], error)
}

// ValuePoint is one point of a performance series: the total portfolio
// gain/loss on a date, with a presentation label for charts.
type ValuePoint struct {
	Date          date.Date `json:"date"`
	AbsoluteValue float64   `json:"absoluteValue"`
	DisplayDate   string    `json:"displayDate"`
}

// PerformanceService reconstructs historical portfolio performance from a
// transaction ledger and a quote-history collaborator.
//
// Every method is a pure function of its arguments plus the one provider
// call; concurrent invocations are independent and safe.
type PerformanceService struct {
	provider HistoryProvider
	log      zerolog.Logger
}

// NewPerformanceService creates a performance service using the given
// history provider and logger.
func NewPerformanceService(provider HistoryProvider, log zerolog.Logger) *PerformanceService {
	return &PerformanceService{
		provider: provider,
		log:      log.With().Str("component", "performance").Logger(),
	}
}

// Series computes the chronological portfolio gain/loss series for the
// period ending on today.
//
// For each date in the window where every active symbol has a same-day
// close price, it sums the blended-cost gain/loss of all active symbols.
// Missing transactions, missing price data and partial coverage all
// resolve to fewer (possibly zero) points, never an error; the only
// propagated failure is ErrInvalidCredentials from the provider.
func (s *PerformanceService) Series(ctx context.Context, ledger *Ledger, period date.Period, today date.Date) ([]ValuePoint, error) {
	window, days := period.WindowEnding(today)
	s.log.Debug().
		Stringer("period", period).
		Stringer("from", window.From).
		Stringer("to", window.To).
		Int("days", days).
		Int("transactions", ledger.Len()).
		Msg("window resolved")

	symbols := ledger.Symbols()
	if len(symbols) == 0 {
		return []ValuePoint{}, nil
	}

	histories, err := s.provider.DailyHistories(ctx, symbols, days)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}
		// Fail soft: one bad feed must not abort the whole computation.
		// The error is preserved here for operators; the caller just sees
		// an empty series.
		s.log.Warn().Err(err).Strs("symbols", symbols).Msg("price fetch failed, treating all symbols as empty")
		histories = make(map[string]date.History[float64], len(symbols))
	}
	for _, symbol := range symbols {
		if _, ok := histories[symbol]; !ok {
			histories[symbol] = date.History[float64]{}
		}
	}
	book := NewPriceBook(histories)

	covered := book.FullCoverageDates(ledger, window)
	s.log.Debug().Int("dates", len(covered)).Msg("full price coverage computed")

	points := make([]ValuePoint, 0, len(covered))
	for _, on := range covered {
		active := ledger.ActiveSymbols(on)
		if len(active) == 0 {
			continue // no position exists yet on this date
		}
		var total float64
		for symbol := range active {
			close, _ := book.Close(symbol, on) // present by coverage filter
			total += ledger.FinancialsAsOf(symbol, on, close).GainLoss.InexactFloat64()
		}
		points = append(points, ValuePoint{
			Date:          on,
			AbsoluteValue: total,
			DisplayDate:   displayDate(on, period),
		})
	}

	if len(points) > 0 {
		s.log.Debug().
			Stringer("first", points[0].Date).
			Stringer("last", points[len(points)-1].Date).
			Int("points", len(points)).
			Msg("series built")
	}
	return points, nil
}

// displayDate formats the chart label for a point: month and day, plus a
// two-digit year for the one-year period.
func displayDate(on date.Date, period date.Period) string {
	if period == date.OneYear {
		return on.Time().Format("Jan 2, 06")
	}
	return on.Time().Format("Jan 2")
}
