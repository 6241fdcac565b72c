package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/foliotrack/folio"
)

type chartCmd struct {
	perfCmd
	out string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render a portfolio's gain/loss series as a PNG chart" }
func (*chartCmd) Usage() string {
	return `ft chart -portfolio <id> [-p <1M|YTD|1Y>] [-o <file.png>] [-api-key <key>]
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.perfCmd.SetFlags(f)
	f.StringVar(&c.out, "o", "performance.png", "Output PNG file.")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	points, period, status := c.series(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}

	png, err := folio.RenderSeriesChart(points, period)
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(c.out, png, 0o644); err != nil {
		return fail(err)
	}
	fmt.Printf("Wrote %s (%d points)\n", c.out, len(points))
	return subcommands.ExitSuccess
}
