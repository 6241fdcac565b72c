package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/eodhd"
	"github.com/foliotrack/folio/server"
)

type serveCmd struct {
	port   int
	apiKey string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the portfolio tracker HTTP server" }
func (*serveCmd) Usage() string {
	return `ft serve [-port <port>] [-api-key <key>]

  Serves the portfolio API. The EODHD API key is read from the -api-key
  flag, the EODHD_API_KEY environment variable, or a .env file.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 8070, "Port to listen on.")
	f.StringVar(&c.apiKey, "api-key", "", "EODHD API key. Defaults to the EODHD_API_KEY environment variable.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// A missing .env file is fine; the environment may carry the key.
	_ = godotenv.Load()

	log := newLogger()
	st, err := openStore(log)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	quotes := eodhd.NewClient(c.apiKey, log)
	perf := folio.NewPerformanceService(quotes, log)

	scheduler := server.NewScheduler(log)
	if err := scheduler.AddJob("@hourly", server.NewStatsJob(st, nil, log)); err != nil {
		return fail(err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Port:        c.port,
		Store:       st,
		Performance: perf,
		Log:         log,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			return fail(err)
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("stopping")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fail(err)
		}
	}
	return subcommands.ExitSuccess
}
