package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/store"
)

const clientColumns = `id, name, email, phone, created_at`

// createdAtFormat is fixed width so created_at text sorts chronologically.
const createdAtFormat = "2006-01-02 15:04:05.000000000"

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

// ListClients returns at most store.ListLimit clients, newest first. Both
// sides of the LIKE are passed through casefold, since SQLite's LIKE only
// ignores case for ASCII.
func (r *clientsRepo) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := make([]any, 0, 2)

	if search != "" {
		query += ` WHERE casefold(name) LIKE casefold(?) ESCAPE '\'`
		args = append(args, store.LikePattern(search))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, store.ListLimit)

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
	return getClient(ctx, r.s.db, id)
}

func getClient(ctx context.Context, q queryer, id int64) (domain.Client, error) {
	row := q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, fields domain.ClientFields) (domain.Client, error) {
	var created domain.Client
	err := r.s.withTx(ctx, func(q queryer) error {
		res, err := q.ExecContext(ctx,
			`INSERT INTO clients (name, email, phone, created_at) VALUES (?, ?, ?, ?)`,
			fields.Name, fields.Email, mapOptionalString(fields.Phone),
			time.Now().UTC().Format(createdAtFormat),
		)
		if err != nil {
			return err
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		created, err = getClient(ctx, q, id)
		return err
	})
	if err != nil {
		return domain.Client{}, err
	}
	return created, nil
}

// UpdateClient applies only the supplied fields. An empty patch is a read.
func (r *clientsRepo) UpdateClient(ctx context.Context, id int64, patch domain.ClientPatch) (domain.Client, error) {
	if patch.IsEmpty() {
		return r.GetClientByID(ctx, id)
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, mapOptionalString(patch.Phone))
	}
	args = append(args, id)

	var updated domain.Client
	err := r.s.withTx(ctx, func(q queryer) error {
		res, err := q.ExecContext(ctx,
			`UPDATE clients SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}

		updated, err = getClient(ctx, q, id)
		return err
	})
	if err != nil {
		return domain.Client{}, err
	}
	return updated, nil
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id int64) (bool, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
