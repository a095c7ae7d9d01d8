package world

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	"github.com/boltdb/bolt"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	cameraBucket = []byte("camera")
	metaBucket   = []byte("meta")

	lastSeedKey = []byte("last_seed")
)

// Session is the viewer state restored on the next run with the same seed.
// World data itself is never stored, it is regenerated from the seed.
type Session struct {
	ID       uuid.UUID  `json:"id"`
	Seed     uint32     `json:"seed"`
	Position mgl32.Vec3 `json:"position"`
	Rx       float32    `json:"rx"`
	Ry       float32    `json:"ry"`
	Saved    time.Time  `json:"saved"`
}

// NewSession starts a session at pos with a fresh id.
func NewSession(seed uint32, pos mgl32.Vec3) *Session {
	return &Session{
		ID:       uuid.New(),
		Seed:     seed,
		Position: pos,
	}
}

type Store interface {
	// LoadSession returns the session saved for seed, or nil if none.
	LoadSession(seed uint32) (*Session, error)
	SaveSession(s *Session) error
	// LastSeed is the seed of the most recently saved session.
	LastSeed() (uint32, bool)
	Close()
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(p string) (*BoltStore, error) {
	db, err := bolt.Open(p, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cameraBucket)
		if err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create buckets")
	}
	db.NoSync = true
	return &BoltStore{
		db: db,
	}, nil
}

func (s *BoltStore) LoadSession(seed uint32) (*Session, error) {
	var sess *Session
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(cameraBucket).Get(encodeSeed(seed))
		if value == nil {
			return nil
		}
		sess = new(Session)
		return json.Unmarshal(value, sess)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load session for seed %d", seed)
	}
	return sess, nil
}

func (s *BoltStore) SaveSession(sess *Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.Saved = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		key := encodeSeed(sess.Seed)
		if err := tx.Bucket(cameraBucket).Put(key, b); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(lastSeedKey, key)
	})
	if err != nil {
		return errors.Wrapf(err, "save session %s", sess.ID)
	}
	log.Printf("saved session %s seed %d at %v", sess.ID, sess.Seed, sess.Position)
	return nil
}

func (s *BoltStore) LastSeed() (seed uint32, ok bool) {
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metaBucket).Get(lastSeedKey)
		if len(v) != 4 {
			return nil
		}
		seed, ok = binary.BigEndian.Uint32(v), true
		return nil
	})
	return seed, ok
}

func (s *BoltStore) Close() {
	s.db.Sync()
	s.db.Close()
}

func encodeSeed(seed uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], seed)
	return buf[:]
}
