package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
	"github.com/foliotrack/folio/store"
)

type fixedProvider struct {
	histories map[string]date.History[float64]
	err       error
}

func (p *fixedProvider) DailyHistories(ctx context.Context, symbols []string, days int) (map[string]date.History[float64], error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make(map[string]date.History[float64], len(symbols))
	for _, symbol := range symbols {
		out[symbol] = p.histories[symbol]
	}
	return out, nil
}

type fixture struct {
	store  *store.Store
	server *httptest.Server
}

func newFixture(t *testing.T, provider folio.HistoryProvider) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "folio.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if provider == nil {
		provider = &fixedProvider{}
	}
	s := New(Config{
		Store:       st,
		Performance: folio.NewPerformanceService(provider, zerolog.Nop()),
		Log:         zerolog.Nop(),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{store: st, server: srv}
}

func (f *fixture) requestJSON(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal %s body: %v", path, err)
	}
	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (f *fixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return f.requestJSON(t, http.MethodPost, path, body)
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (f *fixture) createPortfolio(t *testing.T, name string) store.Portfolio {
	t.Helper()
	resp := f.postJSON(t, "/api/portfolio/create", map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create portfolio status = %d", resp.StatusCode)
	}
	return decodeBody[store.Portfolio](t, resp)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.get(t, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf(`status field = %q, want "ok"`, body["status"])
	}
}

func TestPortfolioEndpoints(t *testing.T) {
	f := newFixture(t, nil)
	p := f.createPortfolio(t, "Growth")

	resp := f.requestJSON(t, http.MethodPut, "/api/portfolio/update", map[string]string{"id": p.ID, "name": "Growth 2030"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decodeBody[store.Portfolio](t, resp)
	if updated.Name != "Growth 2030" {
		t.Errorf("Name = %q, want %q", updated.Name, "Growth 2030")
	}

	resp = f.get(t, "/api/user/portfolios")
	list := decodeBody[struct {
		Portfolios []store.Portfolio `json:"portfolios"`
	}](t, resp)
	if len(list.Portfolios) != 1 || list.Portfolios[0].ID != p.ID {
		t.Fatalf("portfolios = %+v, want single %s", list.Portfolios, p.ID)
	}

	resp = f.requestJSON(t, http.MethodDelete, "/api/portfolio/delete", map[string]string{"id": p.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = f.requestJSON(t, http.MethodDelete, "/api/portfolio/delete", map[string]string{"id": p.ID})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	f := newFixture(t, nil)
	p := f.createPortfolio(t, "main")

	resp := f.postJSON(t, "/api/transaction/create", map[string]any{
		"portfolioId": p.ID,
		"symbol":      "AAPL",
		"action":      "buy",
		"quantity":    10,
		"price":       100.5,
		"date":        "2024-01-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	tx := decodeBody[folio.Transaction](t, resp)
	if tx.ID == "" {
		t.Fatal("created transaction has no id")
	}

	resp = f.requestJSON(t, http.MethodPut, "/api/transaction/update", map[string]any{
		"portfolioId": p.ID,
		"id":          tx.ID,
		"symbol":      "AAPL",
		"action":      "sell",
		"quantity":    4,
		"price":       120,
		"date":        "2024-03-05",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	resp = f.get(t, "/api/portfolio/transactions?portfolioId="+p.ID)
	listing := decodeBody[struct {
		Transactions []folio.Transaction `json:"transactions"`
		Holdings     []folio.Holding     `json:"holdings"`
		Summary      folio.Stats         `json:"summary"`
	}](t, resp)
	if len(listing.Transactions) != 1 || listing.Transactions[0].Action != folio.Sell {
		t.Fatalf("transactions = %+v, want single sell", listing.Transactions)
	}
	// A lone sell leaves a negative position, which still shows as a holding.
	if len(listing.Holdings) != 1 || listing.Holdings[0].Symbol != "AAPL" {
		t.Fatalf("holdings = %+v, want single AAPL", listing.Holdings)
	}
	if listing.Summary.TotalTransactions != 1 || listing.Summary.SellTransactions != 1 {
		t.Errorf("summary = %+v, want 1 sell of 1", listing.Summary)
	}

	resp = f.requestJSON(t, http.MethodDelete, "/api/transaction/delete-from-portfolio", map[string]string{
		"portfolioId": p.ID, "transactionId": tx.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
}

func TestTransactionCreate_RejectsNegativeQuantity(t *testing.T) {
	f := newFixture(t, nil)
	p := f.createPortfolio(t, "main")

	resp := f.postJSON(t, "/api/transaction/create", map[string]any{
		"portfolioId": p.ID,
		"symbol":      "AAPL",
		"action":      "buy",
		"quantity":    -1,
		"price":       100,
		"date":        "2024-01-10",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBulkCreate(t *testing.T) {
	f := newFixture(t, nil)
	p := f.createPortfolio(t, "main")

	resp := f.postJSON(t, "/api/transaction/bulk-create", map[string]any{
		"portfolioId": p.ID,
		"transactions": []map[string]any{
			{"symbol": "AAPL", "action": "buy", "quantity": 10, "price": 100, "date": "2024-01-10"},
			{"symbol": "MSFT", "action": "buy", "quantity": 2, "price": 300, "date": "2024-02-01"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bulk create status = %d", resp.StatusCode)
	}
	body := decodeBody[struct {
		Transactions []folio.Transaction `json:"transactions"`
	}](t, resp)
	if len(body.Transactions) != 2 {
		t.Fatalf("stored = %d, want 2", len(body.Transactions))
	}
}

func TestPerformanceEndpoint(t *testing.T) {
	today := date.Today()
	histories := map[string]date.History[float64]{"AAPL": {}}
	h := histories["AAPL"]
	h.Append(today.Add(-2), 105)
	h.Append(today.Add(-1), 110)
	histories["AAPL"] = h

	f := newFixture(t, &fixedProvider{histories: histories})
	p := f.createPortfolio(t, "main")
	f.postJSON(t, "/api/transaction/create", map[string]any{
		"portfolioId": p.ID,
		"symbol":      "AAPL",
		"action":      "buy",
		"quantity":    10,
		"price":       100,
		"date":        today.Add(-10).String(),
	})

	resp := f.get(t, fmt.Sprintf("/api/portfolio/performance?portfolioId=%s&period=1M", p.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[struct {
		PortfolioID string             `json:"portfolioId"`
		Period      string             `json:"period"`
		Points      []folio.ValuePoint `json:"points"`
	}](t, resp)
	if body.Period != "1M" {
		t.Errorf("period = %q, want 1M", body.Period)
	}
	if len(body.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(body.Points))
	}
	// buy 10 @ 100: close 105 gives +50, close 110 gives +100.
	if body.Points[0].AbsoluteValue != 50 || body.Points[1].AbsoluteValue != 100 {
		t.Errorf("values = %v, %v; want 50, 100", body.Points[0].AbsoluteValue, body.Points[1].AbsoluteValue)
	}
}

func TestPerformanceEndpoint_BadPeriod(t *testing.T) {
	f := newFixture(t, nil)
	p := f.createPortfolio(t, "main")
	resp := f.get(t, "/api/portfolio/performance?portfolioId="+p.ID+"&period=5Y")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPerformanceEndpoint_InvalidCredentials(t *testing.T) {
	f := newFixture(t, &fixedProvider{err: fmt.Errorf("auth: %w", folio.ErrInvalidCredentials)})
	p := f.createPortfolio(t, "main")
	f.postJSON(t, "/api/transaction/create", map[string]any{
		"portfolioId": p.ID, "symbol": "AAPL", "action": "buy",
		"quantity": 1, "price": 100, "date": "2024-01-10",
	})

	resp := f.get(t, "/api/portfolio/performance?portfolioId="+p.ID+"&period=ytd")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestPerformanceChartEndpoint(t *testing.T) {
	today := date.Today()
	var h date.History[float64]
	h.Append(today.Add(-2), 105)
	h.Append(today.Add(-1), 110)

	f := newFixture(t, &fixedProvider{histories: map[string]date.History[float64]{"AAPL": h}})
	p := f.createPortfolio(t, "main")
	f.postJSON(t, "/api/transaction/create", map[string]any{
		"portfolioId": p.ID, "symbol": "AAPL", "action": "buy",
		"quantity": 10, "price": 100, "date": today.Add(-10).String(),
	})

	resp := f.get(t, fmt.Sprintf("/api/portfolio/performance/chart?portfolioId=%s&period=1M", p.ID))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
}

func TestNotFoundPortfolio(t *testing.T) {
	f := newFixture(t, nil)
	resp := f.get(t, "/api/portfolio/transactions?portfolioId=nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
