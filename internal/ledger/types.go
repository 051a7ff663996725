package ledger

import (
	"errors"
	"time"
)

// StatusCompleted is the only status a stored transaction can have: records
// are appended after the debit succeeds, never before.
const StatusCompleted = "completed"

var (
	ErrNotFound            = errors.New("ledger: not found")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrInvalidAmount       = errors.New("ledger: amount must be > 0")
	ErrInvalidBalance      = errors.New("ledger: balance must be >= 0")
)

// Beneficiary holds a redeemable point balance, identified by QR code.
// Balance is a non-negative integer point count; no fractional points.
type Beneficiary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
	QRCode   string `json:"qrCode"`
	Balance  int64  `json:"balance"`
	Phone    string `json:"phone,omitempty"`
}

// Product is an item a partner store offers for points.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Points      int64  `json:"points"`
	Description string `json:"description"`
}

// PartnerStore is a shop accepting voucher points, identified by QR code.
type PartnerStore struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	QRCode   string    `json:"qrCode"`
	Address  string    `json:"address"`
	Phone    string    `json:"phone"`
	Products []Product `json:"products"`
}

// Transaction is the immutable record of a completed debit.
type Transaction struct {
	ID            string    `json:"id"`
	BeneficiaryQR string    `json:"homelessQrCode"`
	StoreQR       string    `json:"storeQrCode"`
	Amount        int64     `json:"amount"`
	ItemName      string    `json:"productName,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"timestamp"`
	Sequence      uint64    `json:"sequence"`
}

// DebitRequest identifies the beneficiary to charge and what for.
type DebitRequest struct {
	BeneficiaryQR string
	StoreQR       string
	ItemName      string
	Amount        int64
}
