// Package pg implements the ledger over Postgres. Debit atomicity comes from
// a serializable transaction plus a FOR UPDATE lock on the balance row.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"streetpoints.org/internal/ids"
	"streetpoints.org/internal/ledger"
)

type Store struct {
	db *sql.DB
}

var _ ledger.Service = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing pool; used by tests with sqlmock.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

const beneficiaryColumns = `id, name, id_number, qr_code, balance, coalesce(phone,'')`

func (s *Store) BeneficiaryByQR(ctx context.Context, qrCode string) (ledger.Beneficiary, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+beneficiaryColumns+`
		from beneficiaries where qr_code=$1
	`, qrCode)
	return scanBeneficiary(row)
}

func (s *Store) Beneficiaries(ctx context.Context) ([]ledger.Beneficiary, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+beneficiaryColumns+`
		from beneficiaries order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Beneficiary
	for rows.Next() {
		var b ledger.Beneficiary
		if err := rows.Scan(&b.ID, &b.Name, &b.IDNumber, &b.QRCode, &b.Balance, &b.Phone); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBalance(ctx context.Context, id string, newBalance int64) error {
	if newBalance < 0 {
		return ledger.ErrInvalidBalance
	}
	res, err := s.db.ExecContext(ctx, `
		update beneficiaries set balance=$2 where id=$1
	`, id, newBalance)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) StoreByQR(ctx context.Context, qrCode string) (ledger.PartnerStore, error) {
	var st ledger.PartnerStore
	err := s.db.QueryRowContext(ctx, `
		select id, name, qr_code, coalesce(address,''), coalesce(phone,'')
		from partner_stores where qr_code=$1
	`, qrCode).Scan(&st.ID, &st.Name, &st.QRCode, &st.Address, &st.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.PartnerStore{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.PartnerStore{}, err
	}
	st.Products, err = s.productsFor(ctx, st.ID)
	return st, err
}

func (s *Store) Stores(ctx context.Context) ([]ledger.PartnerStore, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, qr_code, coalesce(address,''), coalesce(phone,'')
		from partner_stores order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.PartnerStore
	for rows.Next() {
		var st ledger.PartnerStore
		if err := rows.Scan(&st.ID, &st.Name, &st.QRCode, &st.Address, &st.Phone); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Products, err = s.productsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) productsFor(ctx context.Context, storeID string) ([]ledger.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, points, coalesce(description,'')
		from store_products where store_id=$1 order by id
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Product
	for rows.Next() {
		var p ledger.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Points, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Debit locks the beneficiary row, checks the balance, applies the deduction
// and appends the record, all in one serializable transaction. A concurrent
// debit on the same row blocks on the FOR UPDATE lock until commit.
func (s *Store) Debit(ctx context.Context, req ledger.DebitRequest) (ledger.Transaction, int64, error) {
	if req.Amount <= 0 {
		return ledger.Transaction{}, 0, ledger.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return ledger.Transaction{}, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	var balance int64
	err = tx.QueryRowContext(ctx, `
		select id, balance from beneficiaries where qr_code=$1 for update
	`, req.BeneficiaryQR).Scan(&id, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, 0, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Transaction{}, 0, err
	}
	if balance < req.Amount {
		return ledger.Transaction{}, 0, ledger.ErrInsufficientBalance
	}
	newBalance := balance - req.Amount

	if _, err := tx.ExecContext(ctx, `
		update beneficiaries set balance=$2 where id=$1
	`, id, newBalance); err != nil {
		return ledger.Transaction{}, 0, err
	}

	record := ledger.Transaction{
		ID:            ids.New(),
		BeneficiaryQR: req.BeneficiaryQR,
		StoreQR:       req.StoreQR,
		Amount:        req.Amount,
		ItemName:      req.ItemName,
		Status:        ledger.StatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.QueryRowContext(ctx, `
		insert into transactions(id, beneficiary_qr, store_qr, amount, product_name, status, created_at)
		values ($1,$2,$3,$4,nullif($5,''),$6,$7) returning sequence
	`, record.ID, record.BeneficiaryQR, record.StoreQR, record.Amount, record.ItemName,
		record.Status, record.CreatedAt).Scan(&record.Sequence); err != nil {
		return ledger.Transaction{}, 0, err
	}

	if err := tx.Commit(); err != nil {
		return ledger.Transaction{}, 0, err
	}
	return record, newBalance, nil
}

func (s *Store) Transactions(ctx context.Context, qrFilter string) ([]ledger.Transaction, error) {
	query := `
		select id, beneficiary_qr, store_qr, amount, coalesce(product_name,''), status, created_at, sequence
		from transactions
	`
	args := []any{}
	if qrFilter != "" {
		query += ` where beneficiary_qr=$1 or store_qr=$1`
		args = append(args, qrFilter)
	}
	query += ` order by sequence asc`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.BeneficiaryQR, &t.StoreQR, &t.Amount, &t.ItemName,
			&t.Status, &t.CreatedAt, &t.Sequence); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanBeneficiary(row *sql.Row) (ledger.Beneficiary, error) {
	var b ledger.Beneficiary
	err := row.Scan(&b.ID, &b.Name, &b.IDNumber, &b.QRCode, &b.Balance, &b.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Beneficiary{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Beneficiary{}, err
	}
	return b, nil
}
