package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// mapPgError translates driver-level failures into the domain taxonomy.
// 23503 covers dangling client/provider references, 23505 a duplicate
// history version written by a concurrent transaction.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return &ConflictError{Message: "referenced record does not exist"}
		case "23505":
			return &ConflictError{Message: "note was modified concurrently, reload and retry"}
		}
	}
	return err
}

const noteCols = `id, client_id, provider_id, note_type, title, content, status, version,
	signed_by, signed_at, co_signed_by, co_signed_at, approved_by, approved_at,
	locked_at, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	var content []byte
	err := row.Scan(&n.ID, &n.ClientID, &n.ProviderID, &n.NoteType, &n.Title, &content,
		&n.Status, &n.Version,
		&n.SignedBy, &n.SignedAt, &n.CoSignedBy, &n.CoSignedAt, &n.ApprovedBy, &n.ApprovedAt,
		&n.LockedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &n.Content); err != nil {
			return nil, fmt.Errorf("decode note content: %w", err)
		}
	}
	if n.Content == nil {
		n.Content = Content{}
	}
	return &n, nil
}

func encodeContent(c Content) ([]byte, error) {
	if c == nil {
		c = Content{}
	}
	return json.Marshal(c)
}

func (r *repoPG) Create(ctx context.Context, n *Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	content, err := encodeContent(n.Content)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notes (id, client_id, provider_id, note_type, title, content, status, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		n.ID, n.ClientID, n.ProviderID, n.NoteType, n.Title, content, n.Status, n.Version).
		Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	n, err := scanNote(r.conn(ctx).QueryRow(ctx, `SELECT `+noteCols+` FROM notes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "note", ID: id.String()}
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Update writes the note conditionally on the version the caller read. Zero
// rows affected means another writer got there first.
func (r *repoPG) Update(ctx context.Context, n *Note, expectedVersion int) error {
	content, err := encodeContent(n.Content)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE notes SET title=$3, content=$4, status=$5, version=$6,
			signed_by=$7, signed_at=$8, co_signed_by=$9, co_signed_at=$10,
			approved_by=$11, approved_at=$12, locked_at=$13, updated_at=NOW()
		WHERE id = $1 AND version = $2`,
		n.ID, expectedVersion, n.Title, content, n.Status, n.Version,
		n.SignedBy, n.SignedAt, n.CoSignedBy, n.CoSignedAt,
		n.ApprovedBy, n.ApprovedAt, n.LockedAt)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return &ConflictError{Message: "note was modified concurrently, reload and retry"}
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "note", ID: id.String()}
	}
	return nil
}

func (r *repoPG) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE client_id = $1`, clientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+noteCols+` FROM notes WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

const historyCols = `id, note_id, version, title, content, status,
	updated_title, updated_content, updated_status, updated_by, created_at`

func scanHistory(row pgx.Row) (*HistoryEntry, error) {
	var e HistoryEntry
	var content []byte
	err := row.Scan(&e.ID, &e.NoteID, &e.Version, &e.Title, &content, &e.Status,
		&e.UpdatedTitle, &e.UpdatedContent, &e.UpdatedStatus, &e.UpdatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &e.Content); err != nil {
			return nil, fmt.Errorf("decode history content: %w", err)
		}
	}
	if e.Content == nil {
		e.Content = Content{}
	}
	return &e, nil
}

func (r *repoPG) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	content, err := encodeContent(e.Content)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO note_history (id, note_id, version, title, content, status,
			updated_title, updated_content, updated_status, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		e.ID, e.NoteID, e.Version, e.Title, content, e.Status,
		e.UpdatedTitle, e.UpdatedContent, e.UpdatedStatus, e.UpdatedBy).
		Scan(&e.CreatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *repoPG) ListHistory(ctx context.Context, noteID uuid.UUID) ([]*HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+historyCols+` FROM note_history WHERE note_id = $1 ORDER BY version ASC`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) GetHistoryVersion(ctx context.Context, noteID uuid.UUID, version int) (*HistoryEntry, error) {
	e, err := scanHistory(r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyCols+` FROM note_history WHERE note_id = $1 AND version = $2`, noteID, version))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "note version", ID: fmt.Sprintf("%s/%d", noteID, version)}
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
