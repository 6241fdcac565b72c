package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
	"github.com/foliotrack/folio/store"
)

// Job is a named unit of scheduled background work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs background jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates an empty scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// AddJob registers job on a cron schedule such as "@hourly".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := job.Run(ctx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("job completed")
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("job registered")
	return nil
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop waits for running jobs to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// QuoteFunc fetches the latest trading price of a symbol.
type QuoteFunc func(symbol string) (float64, error)

// StatsJob recomputes every portfolio's current market value and blended
// gain/loss from live quotes and caches the results on the portfolio rows,
// so list endpoints stay cheap.
type StatsJob struct {
	store *store.Store
	quote QuoteFunc
	log   zerolog.Logger
}

// NewStatsJob builds the refresh job. A nil quote falls back to the
// intraday Yahoo quote endpoint.
func NewStatsJob(st *store.Store, quote QuoteFunc, log zerolog.Logger) *StatsJob {
	if quote == nil {
		quote = func(symbol string) (float64, error) { return folio.LatestPrice(nil, symbol) }
	}
	return &StatsJob{
		store: st,
		quote: quote,
		log:   log.With().Str("component", "stats-job").Logger(),
	}
}

// Name implements Job.
func (j *StatsJob) Name() string { return "cached-stats" }

// Run refreshes the cached stats of every portfolio. A quote failure skips
// that portfolio and leaves its previous cache in place; it never fails the
// whole sweep.
func (j *StatsJob) Run(ctx context.Context) error {
	portfolios, err := j.store.Portfolios(ctx)
	if err != nil {
		return err
	}
	today := date.Today()
	for _, p := range portfolios {
		if err := j.refresh(ctx, p.ID, today); err != nil {
			j.log.Warn().Err(err).Str("portfolio", p.ID).Msg("stats refresh skipped")
		}
	}
	return nil
}

func (j *StatsJob) refresh(ctx context.Context, portfolioID string, today date.Date) error {
	ledger, err := j.store.Ledger(ctx, portfolioID)
	if err != nil {
		return err
	}

	var totalValue, gainLoss float64
	for symbol := range ledger.ActiveSymbols(today) {
		var price float64
		// Liquidated positions still carry realized gains; their market
		// value is zero regardless of the quote, so skip the fetch.
		if !ledger.SharesAsOf(symbol, today).IsZero() {
			if price, err = j.quote(symbol); err != nil {
				return fmt.Errorf("quote %s: %w", symbol, err)
			}
		}
		f := ledger.FinancialsAsOf(symbol, today, price)
		totalValue += f.MarketValue.InexactFloat64()
		gainLoss += f.GainLoss.InexactFloat64()
	}

	if err := j.store.SetCachedStats(ctx, portfolioID, gainLoss, totalValue); err != nil {
		return err
	}
	j.log.Debug().Str("portfolio", portfolioID).Float64("totalValue", totalValue).Float64("gainLoss", gainLoss).Msg("stats cached")
	return nil
}
