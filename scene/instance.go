package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
)

// Face indices, in the order of world.Vec3.Neighbors.
const (
	FaceLeft = iota
	FaceRight
	FaceUp
	FaceDown
	FaceFront
	FaceBack
)

// FaceFilter marks which faces of a cube are drawn.
type FaceFilter [6]bool

func (f FaceFilter) Any() bool {
	for _, show := range f {
		if show {
			return true
		}
	}
	return false
}

func (f FaceFilter) Count() int {
	n := 0
	for _, show := range f {
		if show {
			n++
		}
	}
	return n
}

// Instance is one drawable block.
type Instance struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
	Faces    FaceFilter
}

// ShowFaces decides which faces of the block at id border a transparent
// neighbor. Neighbors outside the column count as open, the bottom of the
// world never does.
func ShowFaces(column []*world.Chunk, key world.Key, id world.Vec3) FaceFilter {
	var show FaceFilter
	for i, n := range id.Neighbors() {
		if n.Y < 0 {
			continue
		}
		b, ok := world.ColumnBlock(column, key, n)
		show[i] = !ok || b.IsTransparent()
	}
	return show
}

// BuildInstances returns an instance for every active block of a column
// with at least one visible face. Water only shows faces next to air.
func BuildInstances(column []*world.Chunk, key world.Key) []Instance {
	var instances []Instance
	for _, c := range column {
		c.RangeBlocks(func(id world.Vec3, b world.Block) {
			color, ok := b.Color()
			if !ok {
				return
			}
			show := ShowFaces(column, key, id)
			if b.Type == world.TypeWater {
				for i, n := range id.Neighbors() {
					nb, ok := world.ColumnBlock(column, key, n)
					if ok && nb.Type == world.TypeWater {
						show[i] = false
					}
				}
			}
			if !show.Any() {
				return
			}
			instances = append(instances, Instance{
				Position: mgl32.Vec3{float32(id.X), float32(id.Y), float32(id.Z)},
				Color:    color,
				Faces:    show,
			})
		})
	}
	return instances
}
