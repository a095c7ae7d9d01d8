package render

import (
	"github.com/faiface/mainthread"
	"github.com/humboldt-xie/tinyterrain/world"
)

// ColumnMesh is the uploaded geometry of one column.
type ColumnMesh struct {
	id   world.Key
	mesh *Mesh
}

func NewColumnMesh(br *BlockRender, id world.Key) *ColumnMesh {
	return &ColumnMesh{id: id, mesh: br.makeColumnMesh(id)}
}

func (c *ColumnMesh) Faces() int {
	if c.mesh == nil {
		return 0
	}
	return c.mesh.Faces()
}

// Close frees the GL buffers on the main thread without waiting.
func (c *ColumnMesh) Close() {
	mesh := c.mesh
	if mesh == nil {
		return
	}
	c.mesh = nil
	mainthread.CallNonBlock(func() {
		mesh.Release()
	})
}
