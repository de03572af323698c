package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
)

const clientColumns = `id, name, email, phone, created_at`

type clientsRepo struct {
	s *Store
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c     domain.Client
		phone sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
		return domain.Client{}, err
	}
	c.Phone = mapNullStringPtr(phone)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := make([]any, 0, 2)

	if search != "" {
		args = append(args, store.LikePattern(search))
		query += fmt.Sprintf(` WHERE name ILIKE $%d ESCAPE '\'`, len(args))
	}
	args = append(args, store.ListLimit)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id int64) (domain.Client, error) {
	row := r.s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, fields domain.ClientFields) (domain.Client, error) {
	row := r.s.db.QueryRowContext(ctx,
		`INSERT INTO clients (name, email, phone, created_at) VALUES ($1, $2, $3, $4) RETURNING `+clientColumns,
		fields.Name, fields.Email, mapOptionalString(fields.Phone), createdAtNow(),
	)
	return scanClient(row)
}

func (r *clientsRepo) UpdateClient(ctx context.Context, id int64, patch domain.ClientPatch) (domain.Client, error) {
	if patch.IsEmpty() {
		return r.GetClientByID(ctx, id)
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Phone != nil {
		set("phone", mapOptionalString(patch.Phone))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), clientColumns)

	var updated domain.Client
	err := r.s.withTx(ctx, func(q queryer) error {
		var err error
		updated, err = scanClient(q.QueryRowContext(ctx, query, args...))
		return mapNotFound(err)
	})
	if err != nil {
		return domain.Client{}, err
	}
	return updated, nil
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id int64) (bool, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// createdAtNow is the current UTC time rounded up to the microsecond
// precision of timestamptz, so the stored value never precedes the call.
func createdAtNow() time.Time {
	now := time.Now().UTC()
	if t := now.Truncate(time.Microsecond); t.Before(now) {
		return t.Add(time.Microsecond)
	}
	return now
}
