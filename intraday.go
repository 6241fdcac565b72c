package folio

import (
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
)

// latestPriceURL points at Yahoo's chart endpoint; overridable in tests.
var latestPriceURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// LatestPrice returns the most recent traded price for a symbol from the
// Yahoo chart feed. It is a best-effort intraday figure used for cached
// portfolio stats, not for the historical performance series, which only
// ever uses daily closes from the history provider.
func LatestPrice(client *http.Client, symbol string) (float64, error) {
	if client == nil {
		client = CachedClient()
	}
	addr := latestPriceURL + url.PathEscape(symbol) + "?interval=1d&range=1d"

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving %q: %w", symbol, err)
	}

	path := "$.chart.result[0].meta.regularMarketPrice"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing quote for %q: %q %w", symbol, path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("quote for %q at %q is not a number: %v", symbol, path, jval)
	}
	return val, nil
}
