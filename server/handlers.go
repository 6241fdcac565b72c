package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
	"github.com/foliotrack/folio/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.store.Portfolios(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"portfolios": portfolios})
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.store.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.RenamePortfolio(r.Context(), req.ID, req.Name); err != nil {
		s.writeStoreError(w, err)
		return
	}
	p, err := s.store.Portfolio(r.Context(), req.ID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.DeletePortfolio(r.Context(), req.ID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("portfolioId")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "portfolioId is required")
		return
	}
	txs, err := s.store.Transactions(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	ledger := folio.NewLedger(txs...)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"holdings":     ledger.Holdings(date.Today()),
		"summary":      ledger.Stats(),
	})
}

// transactionRequest is the write payload shared by the transaction
// endpoints. Quantity and price accept JSON numbers or strings.
type transactionRequest struct {
	PortfolioID string `json:"portfolioId"`
	folio.Transaction
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !s.decode(w, r, &req) {
		return
	}
	tx, err := s.store.AddTransaction(r.Context(), req.PortfolioID, req.Transaction)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Transaction.ID == "" {
		s.writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}
	if err := s.store.UpdateTransaction(r.Context(), req.PortfolioID, req.Transaction); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req.Transaction)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PortfolioID   string `json:"portfolioId"`
		TransactionID string `json:"transactionId"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), req.PortfolioID, req.TransactionID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleBulkCreateTransactions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PortfolioID  string              `json:"portfolioId"`
		Transactions []folio.Transaction `json:"transactions"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	txs, err := s.store.BulkAddTransactions(r.Context(), req.PortfolioID, req.Transactions)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"transactions": txs})
}

// series runs the shared portfolioId+period query handling of the two
// performance endpoints.
func (s *Server) series(w http.ResponseWriter, r *http.Request) ([]folio.ValuePoint, date.Period, bool) {
	id := r.URL.Query().Get("portfolioId")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "portfolioId is required")
		return nil, 0, false
	}
	period, err := date.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}
	ledger, err := s.store.Ledger(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return nil, 0, false
	}
	points, err := s.perf.Series(r.Context(), ledger, period, date.Today())
	if err != nil {
		if errors.Is(err, folio.ErrInvalidCredentials) {
			s.writeError(w, http.StatusBadGateway, "quote feed rejected the API credentials")
			return nil, 0, false
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, 0, false
	}
	return points, period, true
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	points, period, ok := s.series(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"portfolioId": r.URL.Query().Get("portfolioId"),
		"period":      period.String(),
		"points":      points,
	})
}

func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	points, period, ok := s.series(w, r)
	if !ok {
		return
	}
	png, err := folio.RenderSeriesChart(points, period)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.log.Error().Err(err).Msg("failed to write chart response")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
