package data

import (
	"database/sql"
	"embed"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default dataset store file name.
	DataFileName string = "graphs.db"
)

var (
	//go:embed sql/*
	f embed.FS

	errStoreNotInitialized = errors.New("store not initialized")
)

// Store is a SQLite-backed dataset of featurized graphs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens a dataset store, creating the file and schema when missing.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path not specified")
	}

	create := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		create = true
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open store: %s", path)
	}

	if create {
		log.Debugf("creating store schema: %s", path)
		b, err := f.ReadFile("sql/ddl.sql")
		if err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to read the schema creation file")
		}
		if _, err := db.Exec(string(b)); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to create store schema in: %s", path)
		}
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
