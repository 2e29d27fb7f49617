package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/listenupapp/fieldcodec/internal/codec"
	"github.com/listenupapp/fieldcodec/internal/domain"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// getRow reads a stored row inside txn.
func getRow(txn *badger.Txn, id int64) (store.Row, error) {
	key := rowKey(id)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.Row{}, store.ErrNotFound
	}
	if err != nil {
		return store.Row{}, fmt.Errorf("failed to get key: %w", err)
	}

	var row store.Row
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &row)
	})
	if err != nil {
		return store.Row{}, fmt.Errorf("failed to unmarshal contact %d: %w", id, err)
	}
	return row, nil
}

// setRow writes a row and its slug index entry.
func setRow(txn *badger.Txn, row store.Row) error {
	data, err := msgpack.Marshal(&row)
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}

	if err := txn.Set(rowKey(row.ID), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	if err := txn.Set(slugKey(row.Slug), encodeID(row.ID)); err != nil {
		return fmt.Errorf("failed to set index key: %w", err)
	}
	return nil
}

// slugOwner returns the id holding slug, or 0.
func slugOwner(txn *badger.Txn, slug string) (int64, error) {
	idx := slugKey(slug)

	item, err := txn.Get(idx)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check index key: %w", err)
	}

	var id int64
	err = item.Value(func(val []byte) error {
		id = decodeID(val)
		return nil
	})
	return id, err
}

// highestID seeks to the last row key.
func highestID(txn *badger.Txn) (int64, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	opts.Prefix = []byte(rowPrefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Seek(append([]byte(rowPrefix), 0xFF))
	if !it.ValidForPrefix([]byte(rowPrefix)) {
		return 0, store.ErrNoContacts
	}
	return idFromRowKey(it.Item().Key()), nil
}

func txnKeys(txn *badger.Txn) codec.KeySource {
	return codec.KeySourceFunc(func(ctx context.Context) (int64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return highestID(txn)
	})
}

// CreateContact inserts a contact, assigning its id, timestamps and, when
// empty, its default slug.
// Returns store.ErrAlreadyExists on a duplicate slug.
func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	codecs := s.Codecs()
	c.InitTimestamps(s.now())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var row store.Row
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		row, err = codecs.EncodeRow(ctx, c, txnKeys(txn))
		if err != nil {
			return err
		}

		owner, err := slugOwner(txn, row.Slug)
		if err != nil {
			return err
		}
		if owner != 0 {
			return store.DuplicateSlug(row.Slug)
		}

		row.ID, err = s.nextID()
		if err != nil {
			return err
		}
		return setRow(txn, row)
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row store.Row
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		row, err = getRow(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Codecs().DecodeRow(row)
}

// GetContactBySlug retrieves a contact through the slug index.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) GetContactBySlug(ctx context.Context, slug codec.Slug) (*domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row store.Row
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := slugOwner(txn, string(slug))
		if err != nil {
			return err
		}
		if id == 0 {
			return store.ErrNotFound
		}
		row, err = getRow(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Codecs().DecodeRow(row)
}

// ListContacts returns contacts ordered by id.
func (s *Store) ListContacts(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Contact], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params.Validate()
	after, err := params.After()
	if err != nil {
		return nil, err
	}

	codecs := s.Codecs()
	var contacts []*domain.Contact
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(rowPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		start := rowKey(after + 1)

		for it.Seek(start); it.ValidForPrefix([]byte(rowPrefix)); it.Next() {
			if len(contacts) > params.Limit {
				break
			}

			var row store.Row
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &row)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal contact: %w", err)
			}

			c, err := codecs.DecodeRow(row)
			if err != nil {
				return err
			}
			contacts = append(contacts, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store.Page(contacts, params.Limit, func(c *domain.Contact) int64 { return c.ID }), nil
}

// UpdateContact replaces a contact's fields, keeping its creation time.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	codecs := s.Codecs()
	c.Touch(s.now())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var row store.Row
	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := getRow(txn, c.ID)
		if err != nil {
			return err
		}

		row, err = codecs.EncodeRow(ctx, c, txnKeys(txn))
		if err != nil {
			return err
		}
		row.CreatedAt = old.CreatedAt

		if row.Slug != old.Slug {
			owner, err := slugOwner(txn, row.Slug)
			if err != nil {
				return err
			}
			if owner != 0 {
				return store.DuplicateSlug(row.Slug)
			}

			if err := txn.Delete(slugKey(old.Slug)); err != nil {
				return fmt.Errorf("failed to delete old index key: %w", err)
			}
		}

		return setRow(txn, row)
	})
	if err != nil {
		return err
	}

	c.Slug = codec.Slug(row.Slug)
	c.CreatedAt = row.CreatedAt
	return nil
}

// DeleteContact removes a contact and its slug index entry.
// Returns store.ErrNotFound if the contact does not exist.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		row, err := getRow(txn, id)
		if err != nil {
			return err
		}

		if err := txn.Delete(rowKey(id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}

		if err := txn.Delete(slugKey(row.Slug)); err != nil {
			return fmt.Errorf("failed to delete index key: %w", err)
		}
		return nil
	})
}

// HighestContactID returns the largest contact id.
// Returns store.ErrNoContacts if there are none.
func (s *Store) HighestContactID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		id, err = highestID(txn)
		return err
	})
	return id, err
}
