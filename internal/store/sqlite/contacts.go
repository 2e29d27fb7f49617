package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// contactColumns is the ordered list of columns selected in contacts queries.
const contactColumns = `id, slug, phone, lucky_numbers, created_at, updated_at`

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanContactRow scans a sql.Row (or sql.Rows via its Scan method) into a store.Row.
func scanContactRow(scanner interface{ Scan(dest ...any) error }) (store.Row, error) {
	var (
		row       store.Row
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&row.ID,
		&row.Slug,
		&row.Phone,
		&row.LuckyNumbers,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Row{}, err
	}

	row.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return store.Row{}, err
	}
	row.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return store.Row{}, err
	}
	return row, nil
}

// highestID reads MAX(id) through q.
func highestID(ctx context.Context, q querier) (int64, error) {
	var id sql.NullInt64
	if err := q.QueryRowContext(ctx, `SELECT MAX(id) FROM contacts`).Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, store.ErrNoContacts
	}
	return id.Int64, nil
}

// txKeys reads the highest id inside tx.
func txKeys(tx *sql.Tx) codec.KeySource {
	return codec.KeySourceFunc(func(ctx context.Context) (int64, error) {
		return highestID(ctx, tx)
	})
}

// isUniqueViolation reports a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateContact inserts a contact, assigning its id, timestamps and, when
// empty, its default slug.
// Returns store.ErrAlreadyExists on a duplicate slug.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	codecs := s.Codecs()
	c.InitTimestamps(s.now())

	var row store.Row
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		row, err = codecs.EncodeRow(ctx, c, txKeys(tx))
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO contacts (slug, phone, lucky_numbers, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			row.Slug,
			row.Phone,
			row.LuckyNumbers,
			formatTime(row.CreatedAt),
			formatTime(row.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.DuplicateSlug(row.Slug)
			}
			return err
		}

		row.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return err
	}

	c.ID = row.ID
	c.Slug = codec.Slug(row.Slug)
	s.logger.Debug("contact created", "id", c.ID, "slug", row.Slug)
	return nil
}

// GetContact retrieves a contact by ID.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	return s.getContact(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
}

// GetContactBySlug retrieves a contact by slug.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContactBySlug(ctx context.Context, slug codec.Slug) (*domain.Contact, error) {
	return s.getContact(ctx, `SELECT `+contactColumns+` FROM contacts WHERE slug = ?`, string(slug))
}

func (s *Store) getContact(ctx context.Context, query string, arg any) (*domain.Contact, error) {
	row, err := scanContactRow(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Codecs().DecodeRow(row)
}

// ListContacts returns contacts ordered by id.
func (s *Store) ListContacts(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Contact], error) {
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id > ? ORDER BY id LIMIT ?`,
		after, params.Limit+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codecs := s.Codecs()
	var contacts []*domain.Contact
	for rows.Next() {
		row, err := scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		c, err := codecs.DecodeRow(row)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.Page(contacts, params.Limit, func(c *domain.Contact) int64 { return c.ID }), nil
}

// UpdateContact performs a full row update on an existing contact.
// created_at is never rewritten.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	codecs := s.Codecs()
	c.Touch(s.now())

	var row store.Row
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		row, err = codecs.EncodeRow(ctx, c, txKeys(tx))
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE contacts SET
				slug = ?,
				phone = ?,
				lucky_numbers = ?,
				updated_at = ?
			WHERE id = ?`,
			row.Slug,
			row.Phone,
			row.LuckyNumbers,
			formatTime(row.UpdatedAt),
			row.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.DuplicateSlug(row.Slug)
			}
			return err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.Slug = codec.Slug(row.Slug)
	return nil
}

// DeleteContact deletes a contact.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// HighestContactID returns the largest contact id.
// Returns store.ErrNoContacts if there are none.
func (s *Store) HighestContactID(ctx context.Context) (int64, error) {
	return highestID(ctx, s.db)
}
