package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
)

// txFlags are the fields shared by the buy and sell commands.
type txFlags struct {
	portfolio string
	symbol    string
	quantity  string
	price     string
	day       string
}

func (c *txFlags) set(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol, e.g. AAPL.")
	f.StringVar(&c.quantity, "quantity", "", "Number of shares.")
	f.StringVar(&c.price, "price", "", "Price per share.")
	f.StringVar(&c.day, "date", date.Today().String(), "Transaction date (YYYY-MM-DD).")
}

// record parses the flags and appends the transaction.
func (c *txFlags) record(ctx context.Context, action folio.Action) subcommands.ExitStatus {
	quantity, err := decimal.NewFromString(c.quantity)
	if err != nil {
		return fail(fmt.Errorf("invalid quantity %q: %w", c.quantity, err))
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return fail(fmt.Errorf("invalid price %q: %w", c.price, err))
	}
	on, err := date.Parse(c.day)
	if err != nil {
		return fail(err)
	}

	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	tx := folio.Transaction{Symbol: c.symbol, Action: action, Quantity: quantity, Price: price, Date: on}
	stored, err := st.AddTransaction(ctx, c.portfolio, tx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %s x %s @ %s on %s (%s)\n",
		stored.Action, stored.Symbol, stored.Quantity, stored.Price, stored.Date, stored.ID)
	return subcommands.ExitSuccess
}

type buyCmd struct{ txFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a buy transaction" }
func (*buyCmd) Usage() string {
	return `ft buy -portfolio <id> -symbol <ticker> -quantity <n> -price <p> [-date <YYYY-MM-DD>]
`
}
func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.set(f) }
func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(ctx, folio.Buy)
}

type sellCmd struct{ txFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sell transaction" }
func (*sellCmd) Usage() string {
	return `ft sell -portfolio <id> -symbol <ticker> -quantity <n> -price <p> [-date <YYYY-MM-DD>]
`
}
func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.set(f) }
func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(ctx, folio.Sell)
}

type listTxCmd struct {
	portfolio string
}

func (*listTxCmd) Name() string     { return "tx" }
func (*listTxCmd) Synopsis() string { return "list a portfolio's transactions" }
func (*listTxCmd) Usage() string {
	return `ft tx -portfolio <id>

  Lists the portfolio's transactions in chronological order.
`
}

func (c *listTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
}

func (c *listTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	txs, err := st.Transactions(ctx, c.portfolio)
	if err != nil {
		return fail(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tACTION\tSYMBOL\tQUANTITY\tPRICE\tVALUE\tID")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Action, tx.Symbol, tx.Quantity, tx.Price,
			usd(tx.Value().InexactFloat64()), tx.ID)
	}
	return flushTable(w)
}

type deleteTxCmd struct {
	portfolio string
	id        string
}

func (*deleteTxCmd) Name() string     { return "rm" }
func (*deleteTxCmd) Synopsis() string { return "delete a transaction" }
func (*deleteTxCmd) Usage() string {
	return `ft rm -portfolio <id> -id <transaction-id>
`
}

func (c *deleteTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
	f.StringVar(&c.id, "id", "", "Transaction id.")
}

func (c *deleteTxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStore(newLogger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	if err := st.DeleteTransaction(ctx, c.portfolio, c.id); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted transaction %s\n", c.id)
	return subcommands.ExitSuccess
}
