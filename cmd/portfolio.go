package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type createPortfolioCmd struct {
	name string
}

func (*createPortfolioCmd) Name() string     { return "create" }
func (*createPortfolioCmd) Synopsis() string { return "create a new portfolio" }
func (*createPortfolioCmd) Usage() string {
	return `ft create -name <name>

  Creates a new empty portfolio and prints its id.
`
}

func (c *createPortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the new portfolio.")
}

func (c *createPortfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	p, err := st.CreatePortfolio(ctx, c.name)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created portfolio %q (%s)\n", p.Name, p.ID)
	return subcommands.ExitSuccess
}

type listPortfoliosCmd struct{}

func (*listPortfoliosCmd) Name() string     { return "list" }
func (*listPortfoliosCmd) Synopsis() string { return "list portfolios" }
func (*listPortfoliosCmd) Usage() string {
	return `ft list

  Lists every portfolio with its cached value and gain/loss.
`
}
func (*listPortfoliosCmd) SetFlags(*flag.FlagSet) {}

func (c *listPortfoliosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	portfolios, err := st.Portfolios(ctx)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVALUE\tGAIN/LOSS")
	for _, p := range portfolios {
		value, gain := "-", "-"
		if p.CachedTotalValue != nil {
			value = usd(*p.CachedTotalValue)
		}
		if p.CachedGainLoss != nil {
			gain = usd(*p.CachedGainLoss)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, value, gain)
	}
	return flushTable(w)
}

type renamePortfolioCmd struct {
	id   string
	name string
}

func (*renamePortfolioCmd) Name() string     { return "rename" }
func (*renamePortfolioCmd) Synopsis() string { return "rename a portfolio" }
func (*renamePortfolioCmd) Usage() string {
	return `ft rename -id <portfolio-id> -name <new-name>
`
}

func (c *renamePortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Portfolio id.")
	f.StringVar(&c.name, "name", "", "New portfolio name.")
}

func (c *renamePortfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if err := st.RenamePortfolio(ctx, c.id, c.name); err != nil {
		return fail(err)
	}
	fmt.Printf("Renamed portfolio %s to %q\n", c.id, c.name)
	return subcommands.ExitSuccess
}

type deletePortfolioCmd struct {
	id string
}

func (*deletePortfolioCmd) Name() string     { return "delete" }
func (*deletePortfolioCmd) Synopsis() string { return "delete a portfolio and its transactions" }
func (*deletePortfolioCmd) Usage() string {
	return `ft delete -id <portfolio-id>
`
}

func (c *deletePortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Portfolio id.")
}

func (c *deletePortfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if err := st.DeletePortfolio(ctx, c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted portfolio %s\n", c.id)
	return subcommands.ExitSuccess
}

func flushTable(w *tabwriter.Writer) subcommands.ExitStatus {
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
