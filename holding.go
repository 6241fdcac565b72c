package folio

import (
	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio/date"
)

// Holding summarizes the current position in one symbol.
type Holding struct {
	Symbol          string          `json:"symbol"`
	Shares          decimal.Decimal `json:"currentShares"`
	AverageBuyPrice decimal.Decimal `json:"averageBuyPrice"`
	TotalBuyValue   decimal.Decimal `json:"totalBuyValue"`
	TotalSellValue  decimal.Decimal `json:"totalSellValue"`
}

// Holdings returns the per-symbol positions as of a date, in order of first
// appearance in the ledger. Symbols whose position is exactly zero are
// omitted.
func (l *Ledger) Holdings(on date.Date) []Holding {
	holdings := make([]Holding, 0)
	for _, symbol := range l.Symbols() {
		var h Holding
		var boughtShares decimal.Decimal
		h.Symbol = symbol
		for _, tx := range l.transactions {
			if tx.Date.After(on) {
				break
			}
			if tx.Symbol != symbol {
				continue
			}
			switch tx.Action {
			case Buy:
				h.Shares = h.Shares.Add(tx.Quantity)
				h.TotalBuyValue = h.TotalBuyValue.Add(tx.Value())
				boughtShares = boughtShares.Add(tx.Quantity)
			case Sell:
				h.Shares = h.Shares.Sub(tx.Quantity)
				h.TotalSellValue = h.TotalSellValue.Add(tx.Value())
			}
		}
		if !boughtShares.IsZero() {
			h.AverageBuyPrice = h.TotalBuyValue.Div(boughtShares)
		}
		if h.Shares.IsZero() {
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// Stats is the at-a-glance summary of a portfolio's ledger.
type Stats struct {
	TotalTransactions   int             `json:"totalTransactions"`
	BuyTransactions     int             `json:"buyTransactions"`
	SellTransactions    int             `json:"sellTransactions"`
	TotalBuyValue       decimal.Decimal `json:"totalBuyValue"`
	TotalSellValue      decimal.Decimal `json:"totalSellValue"`
	NetInvestment       decimal.Decimal `json:"netInvestment"`
	UniqueSymbols       int             `json:"uniqueSymbols"`
	CurrentHoldings     int             `json:"currentHoldingsCount"`
	LastTransactionDate date.Date       `json:"lastTransactionDate"`
	IsEmpty             bool            `json:"isEmpty"`
}

// Stats summarizes the whole ledger.
func (l *Ledger) Stats() Stats {
	s := Stats{TotalTransactions: len(l.transactions)}
	for _, tx := range l.transactions {
		switch tx.Action {
		case Buy:
			s.BuyTransactions++
			s.TotalBuyValue = s.TotalBuyValue.Add(tx.Value())
		case Sell:
			s.SellTransactions++
			s.TotalSellValue = s.TotalSellValue.Add(tx.Value())
		}
	}
	s.NetInvestment = s.TotalBuyValue.Sub(s.TotalSellValue)
	s.UniqueSymbols = len(l.Symbols())
	s.LastTransactionDate = l.NewestTransactionDate()
	s.CurrentHoldings = len(l.Holdings(s.LastTransactionDate))
	s.IsEmpty = s.TotalTransactions == 0
	return s
}
