package directory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Postgres is a Directory backed by the principals table. The caller owns the
// *sql.DB (shared with the ledger store).
type Postgres struct {
	db *sql.DB
}

var _ Directory = (*Postgres)(nil)

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const principalColumns = `id, username, password_hash, role, name,
	coalesce(email,''), coalesce(store_id,''), coalesce(qr_code,''),
	coalesce(id_number,''), coalesce(association_name,''),
	coalesce(address,''), coalesce(phone,''), balance`

func (p *Postgres) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	row := p.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where username = $1`,
		strings.ToLower(strings.TrimSpace(username)))
	return scanPrincipal(row)
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*Principal, error) {
	row := p.db.QueryRowContext(ctx,
		`select `+principalColumns+` from principals where id = $1`, id)
	return scanPrincipal(row)
}

// Seed upserts fixture principals. Role is immutable, so conflicts update the
// profile fields only.
func (p *Postgres) Seed(ctx context.Context, principals []*Principal) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, pr := range principals {
		if _, err := tx.ExecContext(ctx, `
			insert into principals
				(id, username, password_hash, role, name, email, store_id,
				 qr_code, id_number, association_name, address, phone, balance)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			on conflict (id) do update set
				name = excluded.name,
				email = excluded.email,
				address = excluded.address,
				phone = excluded.phone
		`, pr.ID, strings.ToLower(pr.Username), pr.PasswordHash, string(pr.Role),
			pr.Name, pr.Email, pr.StoreID, pr.QRCode, pr.IDNumber,
			pr.AssociationName, pr.Address, pr.Phone, pr.Balance); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanPrincipal(row *sql.Row) (*Principal, error) {
	var pr Principal
	var role string
	err := row.Scan(&pr.ID, &pr.Username, &pr.PasswordHash, &role, &pr.Name,
		&pr.Email, &pr.StoreID, &pr.QRCode, &pr.IDNumber, &pr.AssociationName,
		&pr.Address, &pr.Phone, &pr.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	pr.Role = parsed
	return &pr, nil
}
