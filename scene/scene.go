package scene

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
)

// 单次构造的column个数
const batchBuildColumns = 16

type Stat struct {
	Columns   int
	Pending   int
	Instances int
}

// Scene turns the resident columns of a chunk store into instances and
// keeps them in step with the store as the camera moves.
type Scene struct {
	chunks  *world.ChunkStore
	sky     *Sky
	overlay Overlay

	mutex     sync.Mutex
	instances map[world.Key][]Instance
	dirty     bool
}

func New(chunks *world.ChunkStore, day time.Duration) *Scene {
	return &Scene{
		chunks:    chunks,
		sky:       NewSky(day),
		instances: make(map[world.Key][]Instance),
		dirty:     true,
	}
}

func (s *Scene) Chunks() *world.ChunkStore {
	return s.chunks
}

func (s *Scene) Sky() *Sky {
	return s.sky
}

func (s *Scene) Overlay() Overlay {
	return s.overlay
}

// Update advances the clock, moves the chunk window to pos and brings the
// instance cache up to date. It returns the keys whose instances were built
// or dropped by this call.
func (s *Scene) Update(dt time.Duration, pos mgl32.Vec3) (added, removed []world.Key) {
	s.sky.Update(dt)
	changed := s.chunks.Update(pos)
	s.overlay = NewOverlay(pos, s.chunks.BlockPosition(), s.chunks.ChunkPosition())
	if !changed && !s.dirty {
		return nil, nil
	}
	return s.sync()
}

func (s *Scene) sync() (added, removed []world.Key) {
	loaded := s.chunks.LoadedKeys()
	needed := make(map[world.Key]bool, len(loaded))
	for _, key := range loaded {
		needed[key] = true
	}

	s.mutex.Lock()
	for key := range s.instances {
		if !needed[key] {
			delete(s.instances, key)
			removed = append(removed, key)
		}
	}
	var missing []world.Key
	for _, key := range loaded {
		if _, ok := s.instances[key]; !ok {
			missing = append(missing, key)
		}
	}
	s.mutex.Unlock()

	s.sortColumns(missing)
	if len(missing) > batchBuildColumns {
		missing = missing[:batchBuildColumns]
		s.dirty = true
	} else {
		s.dirty = false
	}

	start := time.Now()
	for _, key := range missing {
		column, ok := s.chunks.Column(key)
		if !ok {
			continue
		}
		instances := BuildInstances(column, key)
		s.mutex.Lock()
		s.instances[key] = instances
		s.mutex.Unlock()
		added = append(added, key)
	}
	if len(added) > 0 {
		log.Printf("build instances spend %fs %d", float64(time.Since(start))/float64(time.Second), len(added))
	}
	return added, removed
}

// nearest columns first
func (s *Scene) sortColumns(keys []world.Key) {
	cp := s.chunks.ChunkPosition()
	dist := func(k world.Key) int {
		dx, dz := int(k.X)-cp.X, int(k.Z)-cp.Z
		return dx*dx + dz*dz
	}
	sort.Slice(keys, func(i, j int) bool {
		return dist(keys[i]) < dist(keys[j])
	})
}

// Instances returns the cached instances of a column.
func (s *Scene) Instances(key world.Key) ([]Instance, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	instances, ok := s.instances[key]
	return instances, ok
}

func (s *Scene) Range(f func(key world.Key, instances []Instance) bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, instances := range s.instances {
		if !f(key, instances) {
			return
		}
	}
}

func (s *Scene) Stat() Stat {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	st := Stat{Columns: len(s.instances)}
	for _, instances := range s.instances {
		st.Instances += len(instances)
	}
	st.Pending = len(s.chunks.LoadedKeys()) - st.Columns
	if st.Pending < 0 {
		st.Pending = 0
	}
	return st
}
