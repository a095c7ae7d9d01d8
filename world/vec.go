package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkWidth is the edge length of a chunk in blocks on every axis.
	ChunkWidth = 16
	// ColumnChunks is the number of chunks stacked in one column.
	ColumnChunks = 8
	// ColumnHeight is the height of a column in blocks.
	ColumnHeight = ChunkWidth * ColumnChunks
)

// Vec3 is an integer block coordinate.
type Vec3 struct {
	X, Y, Z int
}

func (v Vec3) Left() Vec3 {
	return Vec3{v.X - 1, v.Y, v.Z}
}
func (v Vec3) Right() Vec3 {
	return Vec3{v.X + 1, v.Y, v.Z}
}
func (v Vec3) Up() Vec3 {
	return Vec3{v.X, v.Y + 1, v.Z}
}
func (v Vec3) Down() Vec3 {
	return Vec3{v.X, v.Y - 1, v.Z}
}
func (v Vec3) Front() Vec3 {
	return Vec3{v.X, v.Y, v.Z + 1}
}
func (v Vec3) Back() Vec3 {
	return Vec3{v.X, v.Y, v.Z - 1}
}

// Neighbors returns the six face neighbors: left, right, up, down, front, back.
func (v Vec3) Neighbors() [6]Vec3 {
	return [6]Vec3{v.Left(), v.Right(), v.Up(), v.Down(), v.Front(), v.Back()}
}

// Point is a horizontal (x, z) position, in blocks or in chunks.
type Point struct {
	X, Z int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// Key identifies a column of chunks. The world only extends over the
// non-negative x/z quadrant, so keys are unsigned.
type Key struct {
	X, Z uint32
}

func (k Key) String() string {
	return fmt.Sprintf("(%d, %d)", k.X, k.Z)
}

// Origin is the world block coordinate of the column's lowest corner.
func (k Key) Origin() Vec3 {
	return Vec3{int(k.X) * ChunkWidth, 0, int(k.Z) * ChunkWidth}
}

// Within reports whether k lies inside the inclusive rectangle [start, end].
func (k Key) Within(start, end Key) bool {
	return k.X >= start.X && k.Z >= start.Z && k.X <= end.X && k.Z <= end.Z
}

// BlockPosition clamps a world position to the non-negative quadrant and
// returns the block it falls in.
func BlockPosition(pos mgl32.Vec3) Point {
	return Point{
		maxInt(int(math.Floor(float64(pos.X()))), 0),
		maxInt(int(math.Floor(float64(pos.Z()))), 0),
	}
}

// ChunkPosition returns the chunk coordinate of a clamped block position.
func ChunkPosition(block Point) Point {
	return Point{block.X / ChunkWidth, block.Z / ChunkWidth}
}

// Window returns the inclusive range of keys within radius chunks of
// chunk, clamped to zero. Chunk coordinates past the key range saturate so
// end stays below math.MaxUint32.
func Window(chunk Point, radius int) (start, end Key) {
	x, z := saturate(chunk.X, radius), saturate(chunk.Z, radius)
	r := int64(radius)
	start = Key{uint32(maxInt64(0, x-r)), uint32(maxInt64(0, z-r))}
	end = Key{uint32(maxInt64(0, x+r)), uint32(maxInt64(0, z+r))}
	return start, end
}

func saturate(c, radius int) int64 {
	limit := int64(math.MaxUint32) - 1 - int64(radius)
	if int64(c) > limit {
		return limit
	}
	return int64(c)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
