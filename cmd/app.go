// Package cmd implements the CLI application to manage portfolios and
// report their performance.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/foliotrack/folio/store"
)

// Register the subcommands.
// A main package calls Register() and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&createPortfolioCmd{}, "portfolios")
	c.Register(&listPortfoliosCmd{}, "portfolios")
	c.Register(&renamePortfolioCmd{}, "portfolios")
	c.Register(&deletePortfolioCmd{}, "portfolios")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&listTxCmd{}, "transactions")
	c.Register(&deleteTxCmd{}, "transactions")

	c.Register(&perfCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")
}

// As a CLI application it is short lived, so global flags are fine.

var dbPath = flag.String("db", "folio.db", "Path to the portfolio database file")
var verbose = flag.Bool("v", false, "Enable debug logging")

// newLogger builds the console logger the commands share.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// openStore opens the app database from the -db flag.
func openStore(log zerolog.Logger) (*store.Store, error) {
	s, err := store.Open(*dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", *dbPath, err)
	}
	return s, nil
}

// fail prints the error and returns the failure exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// usd renders a float amount as a dollar string for report tables.
func usd(v float64) string {
	return money.NewFromFloat(v, money.USD).Display()
}
