// Package badgerdb implements store.Store on Badger.
package badgerdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/fieldcodec/internal/store"
)

// Store wraps a Badger database instance.
type Store struct {
	store.CodecHolder

	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
	now    func() time.Time

	// writeMu serializes contact writes, so the highest key read while
	// resolving a slug default is still the highest when the write commits.
	writeMu sync.Mutex
}

var _ store.Store = (*Store)(nil)

// Options configures Open.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

// Open opens or creates a Badger store.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil            // Disable Badger's internal logging
	bopts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	seq, err := db.GetSequence([]byte(idSequence), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		db:     db,
		seq:    seq,
		logger: logger,
		now:    time.Now,
	}
	s.SetCodecs(store.FixedCodecs(store.DefaultCodecs(store.Keys(s))))

	logger.Info("Badger database opened successfully", "path", opts.Path, "in_memory", opts.InMemory)
	return s, nil
}

// Close releases the id sequence and closes the database.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	if err := s.seq.Release(); err != nil {
		s.logger.Warn("failed to release id sequence", "error", err)
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

// nextID allocates a contact id. Ids start at 1 and are never reused.
func (s *Store) nextID() (int64, error) {
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	return int64(n) + 1, nil
}
