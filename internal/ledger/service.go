package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"streetpoints.org/internal/ids"
)

// Service defines ledger operations. Debit must be atomic per beneficiary:
// two concurrent debits against the same QR code may never both observe the
// same starting balance.
type Service interface {
	BeneficiaryByQR(ctx context.Context, qrCode string) (Beneficiary, error)
	Beneficiaries(ctx context.Context) ([]Beneficiary, error)
	UpdateBalance(ctx context.Context, id string, newBalance int64) error
	StoreByQR(ctx context.Context, qrCode string) (PartnerStore, error)
	Stores(ctx context.Context) ([]PartnerStore, error)
	Debit(ctx context.Context, req DebitRequest) (Transaction, int64, error)
	Transactions(ctx context.Context, qrFilter string) ([]Transaction, error)
}

// InMemory implements Service for the single-process deployment. Debits on
// the same beneficiary serialize on a per-beneficiary mutex; debits on
// different beneficiaries proceed in parallel.
type InMemory struct {
	mu            sync.RWMutex
	beneficiaries map[string]*Beneficiary // keyed by id
	qrIndex       map[string]string       // qr code -> id
	stores        map[string]*PartnerStore
	storeQRIndex  map[string]string
	seq           uint64
	txs           []Transaction

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // per-beneficiary debit locks
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		beneficiaries: make(map[string]*Beneficiary),
		qrIndex:       make(map[string]string),
		stores:        make(map[string]*PartnerStore),
		storeQRIndex:  make(map[string]string),
		locks:         make(map[string]*sync.Mutex),
	}
}

// Load registers beneficiaries and partner stores, replacing entries with the
// same id.
func (s *InMemory) Load(beneficiaries []Beneficiary, stores []PartnerStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range beneficiaries {
		b := beneficiaries[i]
		s.beneficiaries[b.ID] = &b
		s.qrIndex[b.QRCode] = b.ID
	}
	for i := range stores {
		st := stores[i]
		s.stores[st.ID] = &st
		s.storeQRIndex[st.QRCode] = st.ID
	}
}

func (s *InMemory) BeneficiaryByQR(ctx context.Context, qrCode string) (Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.qrIndex[strings.TrimSpace(qrCode)]
	if !ok {
		return Beneficiary{}, ErrNotFound
	}
	return *s.beneficiaries[id], nil
}

func (s *InMemory) Beneficiaries(ctx context.Context) ([]Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Beneficiary, 0, len(s.beneficiaries))
	for _, b := range s.beneficiaries {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpdateBalance(ctx context.Context, id string, newBalance int64) error {
	if newBalance < 0 {
		return ErrInvalidBalance
	}
	lk := s.lockFor(id)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beneficiaries[id]
	if !ok {
		return ErrNotFound
	}
	b.Balance = newBalance
	return nil
}

func (s *InMemory) StoreByQR(ctx context.Context, qrCode string) (PartnerStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.storeQRIndex[strings.TrimSpace(qrCode)]
	if !ok {
		return PartnerStore{}, ErrNotFound
	}
	return copyStore(s.stores[id]), nil
}

func (s *InMemory) Stores(ctx context.Context) ([]PartnerStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PartnerStore, 0, len(s.stores))
	for _, st := range s.stores {
		out = append(out, copyStore(st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Debit checks the balance and deducts it, appending an immutable record.
// The check-then-act sequence runs under the beneficiary's lock so that a
// concurrent debit can never see a stale balance.
func (s *InMemory) Debit(ctx context.Context, req DebitRequest) (Transaction, int64, error) {
	if req.Amount <= 0 {
		return Transaction{}, 0, ErrInvalidAmount
	}

	s.mu.RLock()
	id, ok := s.qrIndex[strings.TrimSpace(req.BeneficiaryQR)]
	s.mu.RUnlock()
	if !ok {
		return Transaction{}, 0, ErrNotFound
	}

	lk := s.lockFor(id)
	lk.Lock()
	defer lk.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.beneficiaries[id]
	if !ok {
		return Transaction{}, 0, ErrNotFound
	}
	if b.Balance < req.Amount {
		return Transaction{}, 0, ErrInsufficientBalance
	}

	b.Balance -= req.Amount
	s.seq++
	tx := Transaction{
		ID:            ids.New(),
		BeneficiaryQR: req.BeneficiaryQR,
		StoreQR:       req.StoreQR,
		Amount:        req.Amount,
		ItemName:      req.ItemName,
		Status:        StatusCompleted,
		CreatedAt:     time.Now().UTC(),
		Sequence:      s.seq,
	}
	s.txs = append(s.txs, tx)
	return tx, b.Balance, nil
}

func (s *InMemory) Transactions(ctx context.Context, qrFilter string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qrFilter = strings.TrimSpace(qrFilter)
	out := make([]Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if qrFilter != "" && tx.BeneficiaryQR != qrFilter && tx.StoreQR != qrFilter {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *InMemory) lockFor(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lk, ok := s.locks[id]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[id] = lk
	}
	return lk
}

func copyStore(st *PartnerStore) PartnerStore {
	out := *st
	out.Products = make([]Product, len(st.Products))
	copy(out.Products, st.Products)
	return out
}
