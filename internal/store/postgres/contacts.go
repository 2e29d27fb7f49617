package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/store"
)

const contactColumns = `id, slug, phone, lucky_numbers, created_at, updated_at`

// lockContacts blocks concurrent writers, including other inserts, until
// the transaction ends. SHARE ROW EXCLUSIVE conflicts with itself and still
// admits readers.
const lockContacts = `LOCK TABLE contacts IN SHARE ROW EXCLUSIVE MODE`

// queryer is satisfied by *pgxpool.Pool and pgx.Tx.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanContactRow(row pgx.Row) (store.Row, error) {
	var r store.Row
	err := row.Scan(&r.ID, &r.Slug, &r.Phone, &r.LuckyNumbers, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func highestID(ctx context.Context, q queryer) (int64, error) {
	var id sql.NullInt64
	if err := q.QueryRow(ctx, `SELECT MAX(id) FROM contacts`).Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, store.ErrNoContacts
	}
	return id.Int64, nil
}

func txKeys(tx pgx.Tx) codec.KeySource {
	return codec.KeySourceFunc(func(ctx context.Context) (int64, error) {
		return highestID(ctx, tx)
	})
}

// CreateContact inserts a contact, assigning its id, timestamps and, when
// empty, its default slug.
// Returns store.ErrAlreadyExists on a duplicate slug.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	codecs := s.Codecs()
	c.InitTimestamps(s.now())

	var row store.Row
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockContacts); err != nil {
			return err
		}

		var err error
		row, err = codecs.EncodeRow(ctx, c, txKeys(tx))
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO contacts (slug, phone, lucky_numbers, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			row.Slug, row.Phone, row.LuckyNumbers, row.CreatedAt, row.UpdatedAt,
		).Scan(&row.ID)
		if isUniqueViolation(err) {
			return store.DuplicateSlug(row.Slug)
		}
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
	return s.getContact(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
}

// GetContactBySlug retrieves a contact by slug.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContactBySlug(ctx context.Context, slug codec.Slug) (*domain.Contact, error) {
	return s.getContact(ctx, `SELECT `+contactColumns+` FROM contacts WHERE slug = $1`, string(slug))
}

func (s *Store) getContact(ctx context.Context, query string, arg any) (*domain.Contact, error) {
	row, err := scanContactRow(s.pool.QueryRow(ctx, query, arg))
	if isNoRows(err) {
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

	rows, err := s.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id > $1 ORDER BY id LIMIT $2`,
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

// UpdateContact replaces a contact's fields, keeping its creation time.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	codecs := s.Codecs()
	c.Touch(s.now())

	var row store.Row
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockContacts); err != nil {
			return err
		}

		var err error
		row, err = codecs.EncodeRow(ctx, c, txKeys(tx))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE contacts SET slug = $1, phone = $2, lucky_numbers = $3, updated_at = $4
			WHERE id = $5`,
			row.Slug, row.Phone, row.LuckyNumbers, row.UpdatedAt, row.ID,
		)
		if isUniqueViolation(err) {
			return store.DuplicateSlug(row.Slug)
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
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
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// HighestContactID returns the largest contact id.
// Returns store.ErrNoContacts if there are none.
func (s *Store) HighestContactID(ctx context.Context) (int64, error) {
	return highestID(ctx, s.pool)
}
