package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/42wim/matterdoge/model"
)

var logger = logrus.WithFields(logrus.Fields{"prefix": "store"})

func SetLogger(l *logrus.Entry) {
	logger = l
}

var (
	usersBucket     = []byte("users")
	usernamesBucket = []byte("usernames")

	ErrNoID = errors.New("user payload without id")
)

// Directory is a persistent copy of every user payload seen on the gateway.
// Users are keyed by id, usernames are stored lowercased and point to the id.
type Directory struct {
	db *bolt.DB
}

func Open(path string) (*Directory, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store.Open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, usernamesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("store.Open %s: %w", path, err)
	}

	logger.Debugf("opened directory %s", path)

	return &Directory{db: db}, nil
}

// Put stores a user payload. A renamed user loses the old username entry.
func (d *Directory) Put(user model.Payload) error {
	id, _ := user["id"].(string)
	if id == "" {
		return ErrNoID
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("store.Put %s: %w", id, err)
	}

	username, _ := user["username"].(string)

	return d.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(usersBucket)
		names := tx.Bucket(usernamesBucket)

		if old := users.Get([]byte(id)); old != nil {
			var prev model.Payload
			if json.Unmarshal(old, &prev) == nil {
				if name, _ := prev["username"].(string); name != "" && !strings.EqualFold(name, username) {
					if err := names.Delete([]byte(strings.ToLower(name))); err != nil {
						return err
					}
				}
			}
		}

		if err := users.Put([]byte(id), data); err != nil {
			return err
		}

		if username == "" {
			return nil
		}

		return names.Put([]byte(strings.ToLower(username)), []byte(id))
	})
}

// FetchUser looks idOrUsername up as an id first, then as a username.
func (d *Directory) FetchUser(ctx context.Context, idOrUsername string) (model.Payload, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var data []byte

	err := d.db.View(func(tx *bolt.Tx) error {
		users := tx.Bucket(usersBucket)

		v := users.Get([]byte(idOrUsername))
		if v == nil {
			if id := tx.Bucket(usernamesBucket).Get([]byte(strings.ToLower(idOrUsername))); id != nil {
				v = users.Get(id)
			}
		}

		if v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("store.FetchUser %s: %w", idOrUsername, err)
	}

	if data == nil {
		return nil, false, nil
	}

	var p model.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("store.FetchUser %s: %w", idOrUsername, err)
	}

	return p, true, nil
}

func (d *Directory) Close() error {
	return d.db.Close()
}
