package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
	"github.com/foliotrack/folio/eodhd"
)

type perfCmd struct {
	portfolio string
	period    string
	apiKey    string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "print a portfolio's historical gain/loss series" }
func (*perfCmd) Usage() string {
	return `ft perf -portfolio <id> [-p <1M|YTD|1Y>] [-api-key <key>]

  Reconstructs the portfolio's daily gain/loss over the period from the
  transaction ledger and historical close prices.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
	f.StringVar(&c.period, "p", "1M", "Period: 1M, YTD or 1Y.")
	f.StringVar(&c.apiKey, "api-key", "", "EODHD API key. Defaults to the EODHD_API_KEY environment variable.")
}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	points, _, status := c.series(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	if len(points) == 0 {
		fmt.Println("No data points for this period.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tGAIN/LOSS")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p.DisplayDate, usd(p.AbsoluteValue))
	}
	return flushTable(w)
}

// series runs the shared fetch-and-compute path of perf and chart.
func (c *perfCmd) series(ctx context.Context) ([]folio.ValuePoint, date.Period, subcommands.ExitStatus) {
	_ = godotenv.Load()

	period, err := date.ParsePeriod(c.period)
	if err != nil {
		return nil, 0, fail(err)
	}

	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return nil, 0, fail(err)
	}
	defer st.Close()

	ledger, err := st.Ledger(ctx, c.portfolio)
	if err != nil {
		return nil, 0, fail(err)
	}

	perf := folio.NewPerformanceService(eodhd.NewClient(c.apiKey, log), log)
	points, err := perf.Series(ctx, ledger, period, date.Today())
	if err != nil {
		return nil, 0, fail(err)
	}
	return points, period, subcommands.ExitSuccess
}
