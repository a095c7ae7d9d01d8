package world

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Stat is a snapshot of loader activity for diagnostics.
type Stat struct {
	Loaded     int
	Loading    int
	Queued     int
	Dispatched uint64
	Completed  uint64
	Evicted    uint64
	Failed     uint64
}

type Option func(s *ChunkStore)

// WithSource makes the loader fetch columns from src instead of generating
// them locally.
func WithSource(src ColumnSource) Option {
	return func(s *ChunkStore) {
		s.source = src
	}
}

// ChunkStore keeps the columns around the player resident. Generation runs
// on a single loader goroutine so Update never blocks on it.
type ChunkStore struct {
	radius int
	source ColumnSource

	mutex    sync.Mutex
	loaded   map[Key][]*Chunk
	loading  map[Key]bool
	queue    []Key
	revision uint64
	stat     Stat
	closed   bool

	// owned by the Update caller
	blockPosition Point
	chunkPosition Point
	seenRevision  uint64

	sigch chan bool
	done  chan struct{}
}

// New creates a store generating terrain for seed with default settings.
func New(seed uint32) *ChunkStore {
	cfg := DefaultConfig()
	cfg.Seed = seed
	s, err := NewChunkStore(cfg)
	if err != nil {
		log.Panicf("default config rejected: %v", err)
	}
	return s
}

// NewChunkStore validates cfg and starts the loader goroutine.
func NewChunkStore(cfg Config, opts ...Option) (*ChunkStore, error) {
	s := &ChunkStore{
		radius:  cfg.Radius,
		loaded:  make(map[Key][]*Chunk),
		loading: make(map[Key]bool),
		sigch:   make(chan bool, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		gen, err := NewGenerator(cfg)
		if err != nil {
			return nil, err
		}
		s.source = gen
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	go s.loadLoop()
	return s, nil
}

func (s *ChunkStore) Radius() int {
	return s.radius
}

func (s *ChunkStore) BlockPosition() Point {
	return s.blockPosition
}

func (s *ChunkStore) ChunkPosition() Point {
	return s.chunkPosition
}

// Window is the current retention window.
func (s *ChunkStore) Window() (start, end Key) {
	return Window(s.chunkPosition, s.radius)
}

// Update moves the retention window to the player position, evicts loaded
// columns that fell out of it and queues the missing ones. Columns still
// being generated are left alone. It reports whether the loaded set changed
// since the previous call.
func (s *ChunkStore) Update(pos mgl32.Vec3) bool {
	s.blockPosition = BlockPosition(pos)
	s.chunkPosition = ChunkPosition(s.blockPosition)
	start, end := Window(s.chunkPosition, s.radius)

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return false
	}
	for key := range s.loaded {
		if !key.Within(start, end) {
			log.Printf("evict column %v", key)
			delete(s.loaded, key)
			s.stat.Evicted++
			s.revision++
		}
	}
	queued := 0
	for x := start.X; x <= end.X; x++ {
		for z := start.Z; z <= end.Z; z++ {
			key := Key{x, z}
			if _, ok := s.loaded[key]; ok || s.loading[key] {
				continue
			}
			log.Printf("asking to load %v", key)
			s.loading[key] = true
			s.queue = append(s.queue, key)
			s.stat.Dispatched++
			queued++
		}
	}
	if queued > 0 {
		s.signal()
	}
	revision := s.revision
	s.mutex.Unlock()

	changed := revision != s.seenRevision
	s.seenRevision = revision
	return changed
}

// nonblock signal, called with the lock held so it cannot race Close
func (s *ChunkStore) signal() {
	select {
	case s.sigch <- true:
	default:
	}
}

func (s *ChunkStore) loadLoop() {
	defer close(s.done)
	for {
		_, ok := <-s.sigch
		if !ok {
			return
		}
		for {
			key, ok := s.next()
			if !ok {
				break
			}
			s.load(key)
		}
	}
}

func (s *ChunkStore) next() (Key, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed || len(s.queue) == 0 {
		return Key{}, false
	}
	key := s.queue[0]
	s.queue = s.queue[1:]
	return key, true
}

func (s *ChunkStore) load(key Key) {
	start := time.Now()
	column, err := s.fetch(key)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.loading, key)
	if err != nil {
		// the key is absent again and will be requested on a later Update
		log.Printf("load column %v failed: %v", key, err)
		s.stat.Failed++
		return
	}
	s.loaded[key] = column
	s.stat.Completed++
	s.revision++
	log.Printf("completed loading of column %v in %fs", key, float64(time.Since(start))/float64(time.Second))
}

func (s *ChunkStore) fetch(key Key) (column []*Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			column, err = nil, errors.Errorf("loader panic: %v", r)
		}
	}()
	column, err = s.source.Column(key)
	if err == nil && len(column) != ColumnChunks {
		err = errors.Errorf("column %v has %d chunks", key, len(column))
	}
	return column, err
}

// Range calls f for every loaded column while holding the store lock. f
// must not call back into the store.
func (s *ChunkStore) Range(f func(key Key, column []*Chunk) bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, column := range s.loaded {
		if !f(key, column) {
			return
		}
	}
}

// Column returns a loaded column. Chunks are immutable so the slice may be
// used after the lock is released.
func (s *ChunkStore) Column(key Key) ([]*Chunk, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	column, ok := s.loaded[key]
	return column, ok
}

// LoadedKeys returns the loaded keys ordered by x then z.
func (s *ChunkStore) LoadedKeys() []Key {
	s.mutex.Lock()
	keys := make([]Key, 0, len(s.loaded))
	for key := range s.loaded {
		keys = append(keys, key)
	}
	s.mutex.Unlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}

func (s *ChunkStore) IsLoaded(key Key) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.loaded[key]
	return ok
}

func (s *ChunkStore) IsLoading(key Key) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.loading[key]
}

// Idle reports whether no column is waiting for the loader.
func (s *ChunkStore) Idle() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.loading) == 0
}

// Revision increases every time a column is published or evicted.
func (s *ChunkStore) Revision() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.revision
}

func (s *ChunkStore) Stat() Stat {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	st := s.stat
	st.Loaded = len(s.loaded)
	st.Loading = len(s.loading)
	st.Queued = len(s.queue)
	return st
}

// Close stops the loader and waits for it to exit. A column being generated
// is allowed to finish, queued requests are dropped.
func (s *ChunkStore) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.queue = nil
	s.mutex.Unlock()
	close(s.sigch)
	<-s.done
}
