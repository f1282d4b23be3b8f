// Package keystore keeps named Rainbow key pairs in a bolt database.
//
// Keys are stored in their MarshalKey encoding. Every entry has a public
// key; the secret half is optional, so verification-only keys can be
// imported too.
package keystore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/sign"
	"github.com/boltdb/bolt"
)

var (
	publicBucket = []byte("public")
	secretBucket = []byte("secret")
	metaBucket   = []byte("meta")
)

var (
	// ErrNotFound is returned when no entry exists under a name.
	ErrNotFound = errors.New("keystore: key not found")
	// ErrExists is returned by Put when the name is taken.
	ErrExists = errors.New("keystore: key already exists")
)

// Meta describes a stored key pair.
type Meta struct {
	Params      string    `json:"params"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	HasSecret   bool      `json:"has_secret"`
}

// Entry is one line of List output.
type Entry struct {
	Name string
	Meta Meta
}

// Store is a key store backed by a single bolt file. It is safe for
// concurrent use.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the store at path with mode 0600.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("keystore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{publicBucket, secretBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("keystore: init %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Put stores kp under name. kp.SecretKey may be nil.
func (s *Store) Put(name string, kp *rainbow.KeyPair) error {
	if name == "" {
		return errors.New("keystore: empty name")
	}
	if kp == nil || kp.PublicKey == nil || !kp.PublicKey.Kind().IsPublic() {
		return fmt.Errorf("%w: key pair needs a public key", rainbow.ErrInvalidKey)
	}
	pub, err := sign.MarshalKey(kp.PublicKey)
	if err != nil {
		return err
	}
	var sec []byte
	if kp.SecretKey != nil {
		if kp.SecretKey.Kind().IsPublic() || kp.SecretKey.Params() != kp.PublicKey.Params() {
			return fmt.Errorf("%w: secret key does not match public key", rainbow.ErrInvalidKey)
		}
		if sec, err = sign.MarshalKey(kp.SecretKey); err != nil {
			return err
		}
	}
	fp, err := sign.Fingerprint(kp.PublicKey)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(Meta{
		Params:      kp.PublicKey.Params().Name(),
		Fingerprint: hex.EncodeToString(fp),
		CreatedAt:   s.now().UTC(),
		HasSecret:   sec != nil,
	})
	if err != nil {
		return err
	}

	key := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(publicBucket).Get(key) != nil {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}
		if err := tx.Bucket(publicBucket).Put(key, pub); err != nil {
			return err
		}
		if sec != nil {
			if err := tx.Bucket(secretBucket).Put(key, sec); err != nil {
				return err
			}
		}
		return tx.Bucket(metaBucket).Put(key, meta)
	})
}

// Get loads the key pair stored under name. SecretKey is nil for
// public-only entries.
func (s *Store) Get(name string) (*rainbow.KeyPair, error) {
	var pub, sec []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		key := []byte(name)
		// Values are only valid inside the transaction.
		pub = clone(tx.Bucket(publicBucket).Get(key))
		sec = clone(tx.Bucket(secretBucket).Get(key))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	kp := &rainbow.KeyPair{}
	if kp.PublicKey, err = sign.UnmarshalKey(pub); err != nil {
		return nil, fmt.Errorf("keystore: public key %s: %w", name, err)
	}
	if sec != nil {
		if kp.SecretKey, err = sign.UnmarshalKey(sec); err != nil {
			return nil, fmt.Errorf("keystore: secret key %s: %w", name, err)
		}
	}
	return kp, nil
}

// Meta returns the metadata stored under name.
func (s *Store) Meta(name string) (Meta, error) {
	var meta Meta
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(metaBucket).Get([]byte(name))
		if raw == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return json.Unmarshal(raw, &meta)
	})
	return meta, err
}

// List returns all entries ordered by name.
func (s *Store) List() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).ForEach(func(k, v []byte) error {
			e := Entry{Name: string(k)}
			if err := json.Unmarshal(v, &e.Meta); err != nil {
				return fmt.Errorf("keystore: meta %s: %w", k, err)
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

// Delete removes the entry stored under name.
func (s *Store) Delete(name string) error {
	key := []byte(name)
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(publicBucket).Get(key) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		for _, b := range [][]byte{publicBucket, secretBucket, metaBucket} {
			if err := tx.Bucket(b).Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
