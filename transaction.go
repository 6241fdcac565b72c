package folio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio/date"
)

// Action is the direction of a transaction. Quantity and price are always
// positive; the direction is encoded solely by the action.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// ParseAction parses a transaction action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case Buy, Sell:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q (want %q or %q)", s, Buy, Sell)
	}
}

// Transaction is one immutable ledger entry. Edits upstream produce a new
// stored record under the same ID; the core only ever sees snapshots.
type Transaction struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Action   Action          `json:"action"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     date.Date       `json:"date"`
}

// Value returns the transaction value, quantity times price.
func (t Transaction) Value() decimal.Decimal { return t.Quantity.Mul(t.Price) }

// NewBuy creates a buy transaction.
func NewBuy(id, symbol string, quantity, price decimal.Decimal, on date.Date) Transaction {
	return Transaction{ID: id, Symbol: symbol, Action: Buy, Quantity: quantity, Price: price, Date: on}
}

// NewSell creates a sell transaction.
func NewSell(id, symbol string, quantity, price decimal.Decimal, on date.Date) Transaction {
	return Transaction{ID: id, Symbol: symbol, Action: Sell, Quantity: quantity, Price: price, Date: on}
}
