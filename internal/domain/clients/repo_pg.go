package clients

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practicewell/practicewell/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// pageClause appends LIMIT/OFFSET placeholders numbered after the n
// parameters already in the query.
func pageClause(n int) string {
	return ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
}

const clientCols = `id, status, first_name, last_name, preferred_name, birth_date, gender,
	phone_mobile, email, address_line1, address_line2, city, state, postal_code,
	emergency_contact, emergency_phone, primary_provider_id, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Status, &c.FirstName, &c.LastName, &c.PreferredName,
		&c.BirthDate, &c.Gender, &c.PhoneMobile, &c.Email,
		&c.AddressLine1, &c.AddressLine2, &c.City, &c.State, &c.PostalCode,
		&c.EmergencyContact, &c.EmergencyPhone, &c.PrimaryProviderID,
		&c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Client) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clients (id, status, first_name, last_name, preferred_name, birth_date, gender,
			phone_mobile, email, address_line1, address_line2, city, state, postal_code,
			emergency_contact, emergency_phone, primary_provider_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`,
		c.ID, c.Status, c.FirstName, c.LastName, c.PreferredName, c.BirthDate, c.Gender,
		c.PhoneMobile, c.Email, c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode,
		c.EmergencyContact, c.EmergencyPhone, c.PrimaryProviderID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	return scanClient(r.conn(ctx).QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Client) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clients SET status=$2, first_name=$3, last_name=$4, preferred_name=$5,
			birth_date=$6, gender=$7, phone_mobile=$8, email=$9,
			address_line1=$10, address_line2=$11, city=$12, state=$13, postal_code=$14,
			emergency_contact=$15, emergency_phone=$16, primary_provider_id=$17, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status, c.FirstName, c.LastName, c.PreferredName,
		c.BirthDate, c.Gender, c.PhoneMobile, c.Email,
		c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode,
		c.EmergencyContact, c.EmergencyPhone, c.PrimaryProviderID)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Client, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + clientCols + ` FROM clients` + where +
		` ORDER BY last_name, first_name` + pageClause(len(args))
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
