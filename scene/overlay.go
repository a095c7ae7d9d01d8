package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
)

// Overlay is the position readout drawn over the view.
type Overlay struct {
	Player string
	Block  string
	Chunk  string
}

func NewOverlay(pos mgl32.Vec3, block, chunk world.Point) Overlay {
	return Overlay{
		Player: fmt.Sprintf("player: %.2f %.2f %.2f", pos.X(), pos.Y(), pos.Z()),
		Block:  fmt.Sprintf("block: %v", block),
		Chunk:  fmt.Sprintf("chunk: %v", chunk),
	}
}

func (o Overlay) Lines() []string {
	return []string{o.Player, o.Block, o.Chunk}
}

func (o Overlay) String() string {
	return strings.Join(o.Lines(), "\n")
}
