package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCatalogue = []byte("catalogue")

// Views under which a catalogue can be stored.
const (
	ViewScan   = "scan"
	ViewSorted = "sorted"
)

// Catalogue is the last list fetched for one view.
type Catalogue struct {
	SavedAt time.Time         `json:"savedAt"`
	Files   []json.RawMessage `json:"files"`
}

// Store keeps the last fetched catalogue per view in a BoltDB file, one
// file per backend.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens or creates the store for backendURL below dir.
func Open(dir, backendURL string) (*Store, error) {
	dir = filepath.Join(dir, hashBackendURL(backendURL))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(dir, "catalogue.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCatalogue)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func hashBackendURL(backendURL string) string {
	normalized := strings.TrimRight(strings.ToLower(backendURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Save stores files as the catalogue of view.
func (s *Store) Save(view string, files []json.RawMessage) error {
	data, err := json.Marshal(Catalogue{SavedAt: time.Now().UTC(), Files: files})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCatalogue).Put([]byte(view), data)
	})
}

// Load returns the stored catalogue of view. ok is false when nothing has
// been stored yet.
func (s *Store) Load(view string) (cat Catalogue, ok bool, err error) {
	var data []byte
	err = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketCatalogue).Get([]byte(view)); v != nil {
			// Bolt values are only valid inside the transaction.
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return Catalogue{}, false, err
	}

	if err := json.Unmarshal(data, &cat); err != nil {
		return Catalogue{}, false, fmt.Errorf("corrupt cache entry %q: %w", view, err)
	}
	return cat, true, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
