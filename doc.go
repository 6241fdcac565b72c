// Package folio tracks personal investment portfolios: a ledger of buy and
// sell transactions per portfolio, valued against daily close prices from a
// historical quote feed.
//
// The heart of the package is the performance series builder, which replays
// a transaction ledger against sparse per-symbol price histories and
// produces a day-by-day series of portfolio gain/loss for a requested
// period. Share counts and cost basis use a single blended "true cost"
// model: total buy value minus total sell value, with no tax-lot matching.
//
// All computations are pure functions of their inputs. The only external
// collaborator is the HistoryProvider that fetches bulk daily price
// histories; everything else (persistence, HTTP surface, CLI) lives in the
// subpackages.
package folio
