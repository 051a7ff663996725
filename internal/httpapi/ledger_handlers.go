package httpapi

import (
	"errors"
	"net/http"

	"streetpoints.org/internal/audit"
	"streetpoints.org/internal/ledger"
	"streetpoints.org/internal/session"
)

func (a *API) handleBeneficiaryByQR(w http.ResponseWriter, r *http.Request) {
	b, err := a.ledger.BeneficiaryByQR(r.Context(), r.PathValue("qrCode"))
	if err != nil {
		handleLedgerError(w, err)
		return
	}
	writeData(w, http.StatusOK, b)
}

func (a *API) handleBeneficiaries(w http.ResponseWriter, r *http.Request) {
	list, err := a.ledger.Beneficiaries(r.Context())
	if err != nil {
		handleLedgerError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

type updateBalanceRequest struct {
	Balance *int64 `json:"balance"`
}

func (a *API) handleUpdateBalance(w http.ResponseWriter, r *http.Request) {
	var req updateBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Balance == nil {
		writeFailure(w, http.StatusBadRequest, "balance is required")
		return
	}

	id := r.PathValue("id")
	if err := a.ledger.UpdateBalance(r.Context(), id, *req.Balance); err != nil {
		handleLedgerError(w, err)
		return
	}

	actor := audit.Actor{}
	if profile, ok := session.ProfileFromContext(r.Context()); ok {
		actor = audit.Actor{ID: profile.ID, Role: string(profile.Role)}
	}
	_ = audit.LogEvent(r.Context(), "ledger.balance_updated", actor,
		map[string]any{"beneficiary_id": id, "balance": *req.Balance})

	writeMessage(w, http.StatusOK, "Balance updated")
}

func (a *API) handleStoreByQR(w http.ResponseWriter, r *http.Request) {
	st, err := a.ledger.StoreByQR(r.Context(), r.PathValue("qrCode"))
	if err != nil {
		handleLedgerError(w, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (a *API) handleStores(w http.ResponseWriter, r *http.Request) {
	list, err := a.ledger.Stores(r.Context())
	if err != nil {
		handleLedgerError(w, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func handleLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidBalance):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeFailure(w, http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ledger.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not found")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}
