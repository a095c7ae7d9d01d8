package world

import (
	"log"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// ColumnSource produces the 8 chunks of a column. Implementations must be
// safe to call from the loader goroutine.
type ColumnSource interface {
	Column(key Key) ([]*Chunk, error)
}

type heightMap [ChunkWidth][ChunkWidth]float64

// Generator builds columns from a Terrain. Column heights are cached per
// key since height only depends on x and z.
type Generator struct {
	terrain  *Terrain
	bands    bandTable
	seaLevel int
	heights  *lru.Cache // map[Key]*heightMap
}

func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bands, _ := cfg.bandTable()
	heights, err := lru.New(cfg.HeightCache)
	if err != nil {
		return nil, err
	}
	return &Generator{
		terrain:  NewTerrain(cfg),
		bands:    bands,
		seaLevel: cfg.SeaLevel,
		heights:  heights,
	}, nil
}

func (g *Generator) Terrain() *Terrain {
	return g.terrain
}

func (g *Generator) heightMap(key Key) *heightMap {
	if hm, ok := g.heights.Get(key); ok {
		return hm.(*heightMap)
	}
	hm := new(heightMap)
	o := key.Origin()
	for x := 0; x < ChunkWidth; x++ {
		for z := 0; z < ChunkWidth; z++ {
			hm[x][z] = g.terrain.Height(o.X+x, o.Z+z)
		}
	}
	g.heights.Add(key, hm)
	return hm
}

// HeightAt returns the surface height at a world block coordinate.
func (g *Generator) HeightAt(worldX, worldZ int) float64 {
	if worldX < 0 || worldZ < 0 {
		return g.terrain.Height(worldX, worldZ)
	}
	key := Key{uint32(worldX / ChunkWidth), uint32(worldZ / ChunkWidth)}
	return g.heightMap(key)[worldX%ChunkWidth][worldZ%ChunkWidth]
}

// SurfaceY is the y of the first block above ground or water at a world
// coordinate.
func (g *Generator) SurfaceY(worldX, worldZ int) int {
	h := int(math.Ceil(g.HeightAt(worldX, worldZ)))
	if h < g.seaLevel {
		h = g.seaLevel
	}
	return h
}

// Classify returns the block type at height y over a surface of the given
// height. Below sea level everything starts as water, and anything below
// the surface is then reclassified by its band.
func (g *Generator) Classify(y int, height float64) Type {
	ty := TypeInactive
	if y < g.seaLevel {
		ty = TypeWater
	}
	if float64(y) < height {
		ty = g.bands.classify(y)
	}
	return ty
}

// Column generates the column at key. It never fails.
func (g *Generator) Column(key Key) ([]*Chunk, error) {
	start := time.Now()
	hm := g.heightMap(key)
	chunks := make([]*Chunk, 0, ColumnChunks)
	for slot := 0; slot < ColumnChunks; slot++ {
		c := newChunk(key, slot)
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < ChunkWidth; y++ {
				by := y + ChunkWidth*slot
				for z := 0; z < ChunkWidth; z++ {
					c.blocks[x][y][z] = NewBlock(g.Classify(by, hm[x][z]))
				}
			}
		}
		chunks = append(chunks, c)
	}
	log.Printf("generate column %v spend %fs", key, float64(time.Since(start))/float64(time.Second))
	return chunks, nil
}
