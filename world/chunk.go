package world

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk is a 16x16x16 grid of blocks indexed [x][y][z]. A chunk is fully
// built before it is published and never changes afterwards.
type Chunk struct {
	blocks [ChunkWidth][ChunkWidth][ChunkWidth]Block
	start  mgl32.Vec3
}

func newChunk(key Key, slot int) *Chunk {
	if slot < 0 || slot >= ColumnChunks {
		log.Panicf("chunk slot %d out of column %v", slot, key)
	}
	return &Chunk{
		start: mgl32.Vec3{
			float32(ChunkWidth * int(key.X)),
			float32(ChunkWidth * slot),
			float32(ChunkWidth * int(key.Z)),
		},
	}
}

// Start is the world-space corner of the chunk.
func (c *Chunk) Start() mgl32.Vec3 {
	return c.start
}

// Origin is Start as an integer block coordinate.
func (c *Chunk) Origin() Vec3 {
	return Vec3{int(c.start.X()), int(c.start.Y()), int(c.start.Z())}
}

func (c *Chunk) Blocks() *[ChunkWidth][ChunkWidth][ChunkWidth]Block {
	return &c.blocks
}

// Block returns the block at local coordinates.
func (c *Chunk) Block(x, y, z int) Block {
	return c.blocks[x][y][z]
}

// RangeBlocks calls f with the world coordinate of every active block.
func (c *Chunk) RangeBlocks(f func(id Vec3, b Block)) {
	o := c.Origin()
	for x := 0; x < ChunkWidth; x++ {
		for y := 0; y < ChunkWidth; y++ {
			for z := 0; z < ChunkWidth; z++ {
				b := c.blocks[x][y][z]
				if !b.IsActive() {
					continue
				}
				f(Vec3{o.X + x, o.Y + y, o.Z + z}, b)
			}
		}
	}
}

// ColumnBlock looks up a world block inside a column. Coordinates outside
// the column report ok == false.
func ColumnBlock(column []*Chunk, key Key, id Vec3) (b Block, ok bool) {
	o := key.Origin()
	x, z := id.X-o.X, id.Z-o.Z
	if x < 0 || x >= ChunkWidth || z < 0 || z >= ChunkWidth {
		return b, false
	}
	if id.Y < 0 || id.Y >= len(column)*ChunkWidth {
		return b, false
	}
	return column[id.Y/ChunkWidth].blocks[x][id.Y%ChunkWidth][z], true
}
