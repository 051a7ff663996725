package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"streetpoints.org/internal/audit"
	"streetpoints.org/internal/ledger"
	"streetpoints.org/internal/obs"
	"streetpoints.org/internal/session"
	"streetpoints.org/internal/stream"
)

type debitRequest struct {
	BeneficiaryQR string `json:"homelessQrCode"`
	StoreQR       string `json:"storeQrCode"`
	ItemName      string `json:"productName"`
	Amount        int64  `json:"amount"`
}

type debitResponse struct {
	Transaction ledger.Transaction `json:"transaction"`
	NewBalance  int64              `json:"newBalance"`
}

func (a *API) handleDebit(w http.ResponseWriter, r *http.Request) {
	var req debitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.BeneficiaryQR) == "" {
		writeFailure(w, http.StatusBadRequest, "homelessQrCode is required")
		return
	}

	tx, newBalance, err := a.ledger.Debit(r.Context(), ledger.DebitRequest{
		BeneficiaryQR: req.BeneficiaryQR,
		StoreQR:       req.StoreQR,
		ItemName:      req.ItemName,
		Amount:        req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			obs.ObserveDebit("invalid")
		case errors.Is(err, ledger.ErrInsufficientBalance):
			obs.ObserveDebit("insufficient_balance")
		case errors.Is(err, ledger.ErrNotFound):
			obs.ObserveDebit("not_found")
		}
		handleLedgerError(w, err)
		return
	}
	obs.ObserveDebit("ok")

	if a.stream != nil {
		a.stream.Publish(stream.FromTransaction(tx, newBalance))
	}

	actor := audit.Actor{}
	if profile, ok := session.ProfileFromContext(r.Context()); ok {
		actor = audit.Actor{ID: profile.ID, Role: string(profile.Role)}
	}
	_ = audit.LogEvent(r.Context(), "ledger.debit", actor, map[string]any{
		"transaction_id": tx.ID,
		"beneficiary_qr": tx.BeneficiaryQR,
		"store_qr":       tx.StoreQR,
		"amount":         tx.Amount,
		"new_balance":    newBalance,
	})

	writeData(w, http.StatusOK, debitResponse{Transaction: tx, NewBalance: newBalance})
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := a.ledger.Transactions(r.Context(), r.URL.Query().Get("qrCode"))
	if err != nil {
		handleLedgerError(w, err)
		return
	}
	writeData(w, http.StatusOK, txs)
}
