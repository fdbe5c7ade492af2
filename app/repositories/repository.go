package repositories

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store owns the Badger database shared by the post and user repositories.
type Store struct {
	db       *badger.DB
	mutex    sync.RWMutex
	dbPath   string
	isTestDB bool
	posts    *BadgerPostRepository
	users    *BadgerUserRepository
}

// Open opens the Badger database at path. An empty path opens an in-memory
// database, and "test_db" opens a throwaway directory removed on Close.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	isTest := false
	switch path {
	case "":
		opts = opts.WithInMemory(true)
	case "test_db":
		tempPath, err := os.MkdirTemp("", "notebook_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		opts = opts.WithDir(tempPath).WithValueDir(tempPath).WithSyncWrites(false)
		path = tempPath
		isTest = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewStore(db, path, isTest), nil
}

// NewStore wraps an already opened database.
func NewStore(db *badger.DB, path string, isTestDB bool) *Store {
	return &Store{
		db:       db,
		dbPath:   path,
		isTestDB: isTestDB,
		posts:    NewBadgerPostRepository(db),
		users:    NewBadgerUserRepository(db),
	}
}

// DB exposes the underlying database.
func (s *Store) DB() *badger.DB { return s.db }

// Posts returns the post repository backed by this store.
func (s *Store) Posts() *BadgerPostRepository { return s.posts }

// Users returns the user repository backed by this store.
func (s *Store) Users() *BadgerUserRepository { return s.users }

// Backup writes a full backup of the database to w and returns the version it covers.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.db.Backup(w, 0)
}

// Restore loads a backup produced by Backup into the database.
func (s *Store) Restore(r io.Reader) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Load(r, 16)
}

// Clear drops every key in the database.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil {
		return err
	}

	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}
