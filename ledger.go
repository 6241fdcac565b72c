package folio

import (
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio/date"
)

// Ledger is the transaction snapshot for a single portfolio.
//
// Transactions are kept in chronological order. The sort is stable, so
// same-day transactions keep their insertion order; only cumulative sums
// matter to the accounting primitives, so any stable order is correct.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates a ledger from the given transactions.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{}
	l.Append(txs...)
	return l
}

// Append adds transactions to the ledger, keeping chronological order.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over all transactions in chronological
// order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// OldestTransactionDate returns the date of the first transaction, or the
// zero date for an empty ledger.
func (l *Ledger) OldestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[0].Date
}

// NewestTransactionDate returns the date of the last transaction, or the
// zero date for an empty ledger.
func (l *Ledger) NewestTransactionDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[len(l.transactions)-1].Date
}

// Symbols returns every distinct symbol appearing anywhere in the ledger,
// in order of first appearance.
func (l *Ledger) Symbols() []string {
	seen := make(map[string]bool)
	symbols := make([]string, 0)
	for _, tx := range l.transactions {
		if !seen[tx.Symbol] {
			seen[tx.Symbol] = true
			symbols = append(symbols, tx.Symbol)
		}
	}
	return symbols
}

// ActiveSymbols returns the set of symbols with at least one transaction
// dated on or before the given date.
func (l *Ledger) ActiveSymbols(on date.Date) map[string]bool {
	active := make(map[string]bool)
	for _, tx := range l.transactions {
		if tx.Date.After(on) {
			break // chronological order: nothing later can qualify
		}
		active[tx.Symbol] = true
	}
	return active
}

// SharesAsOf returns the signed share count for a symbol as of a cutoff
// date (inclusive): buys add quantity, sells subtract it.
//
// The result may be zero or negative; over-selling is carried through
// arithmetically, never rejected here.
func (l *Ledger) SharesAsOf(symbol string, on date.Date) decimal.Decimal {
	var shares decimal.Decimal
	for _, tx := range l.transactions {
		if tx.Date.After(on) {
			break
		}
		if tx.Symbol != symbol {
			continue
		}
		switch tx.Action {
		case Buy:
			shares = shares.Add(tx.Quantity)
		case Sell:
			shares = shares.Sub(tx.Quantity)
		}
	}
	return shares
}

// Financials aggregates a symbol's ledger state as of a date, valued at a
// same-day close price. Derived on every query, never stored.
type Financials struct {
	Shares         decimal.Decimal
	TotalBuyValue  decimal.Decimal
	TotalSellValue decimal.Decimal
	MarketValue    decimal.Decimal
	TrueCost       decimal.Decimal
	GainLoss       decimal.Decimal
}

// FinancialsAsOf folds the symbol's transactions up to the cutoff date
// (inclusive) and values the resulting position at the given close price.
//
//	TrueCost    = TotalBuyValue - TotalSellValue
//	MarketValue = Shares x close
//	GainLoss    = MarketValue - TrueCost
//
// A fully liquidated position keeps its realized gain/loss: at zero shares
// GainLoss equals TotalSellValue - TotalBuyValue, not zero. This blended
// cost model is deliberate; there is no lot-matched realized/unrealized
// split.
func (l *Ledger) FinancialsAsOf(symbol string, on date.Date, close float64) Financials {
	var f Financials
	for _, tx := range l.transactions {
		if tx.Date.After(on) {
			break
		}
		if tx.Symbol != symbol {
			continue
		}
		switch tx.Action {
		case Buy:
			f.Shares = f.Shares.Add(tx.Quantity)
			f.TotalBuyValue = f.TotalBuyValue.Add(tx.Value())
		case Sell:
			f.Shares = f.Shares.Sub(tx.Quantity)
			f.TotalSellValue = f.TotalSellValue.Add(tx.Value())
		}
	}
	f.MarketValue = f.Shares.Mul(decimal.NewFromFloat(close))
	f.TrueCost = f.TotalBuyValue.Sub(f.TotalSellValue)
	f.GainLoss = f.MarketValue.Sub(f.TrueCost)
	return f
}
