package scene

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/humboldt-xie/tinyterrain/world"
	"github.com/pkg/errors"
)

// ColumnReader is the read side of a chunk store.
type ColumnReader interface {
	Window() (start, end world.Key)
	Column(key world.Key) ([]*world.Chunk, bool)
}

// Snapshot renders a top-down map of the current window, one pixel per
// block column. Columns that are not loaded stay transparent. North (low z)
// is at the top.
func Snapshot(chunks ColumnReader) *image.NRGBA {
	start, end := chunks.Window()
	w := int(end.X-start.X+1) * world.ChunkWidth
	h := int(end.Z-start.Z+1) * world.ChunkWidth
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for kx := start.X; kx <= end.X; kx++ {
		for kz := start.Z; kz <= end.Z; kz++ {
			key := world.Key{X: kx, Z: kz}
			column, ok := chunks.Column(key)
			if !ok {
				continue
			}
			o := key.Origin()
			px := int(kx-start.X) * world.ChunkWidth
			pz := int(kz-start.Z) * world.ChunkWidth
			for x := 0; x < world.ChunkWidth; x++ {
				for z := 0; z < world.ChunkWidth; z++ {
					c, ok := topColor(column, key, o.X+x, o.Z+z)
					if ok {
						img.SetNRGBA(px+x, pz+z, c)
					}
				}
			}
		}
	}
	return img
}

// topColor is the color of the highest active block, darker the lower it
// sits.
func topColor(column []*world.Chunk, key world.Key, x, z int) (color.NRGBA, bool) {
	for y := len(column)*world.ChunkWidth - 1; y >= 0; y-- {
		b, _ := world.ColumnBlock(column, key, world.Vec3{X: x, Y: y, Z: z})
		c, ok := b.Color()
		if !ok {
			continue
		}
		shade := 0.5 + 0.5*clamp01(float32(y)/64)
		return color.NRGBA{
			R: uint8(255 * clamp01(c.X()*shade)),
			G: uint8(255 * clamp01(c.Y()*shade)),
			B: uint8(255 * clamp01(c.Z()*shade)),
			A: 255,
		}, true
	}
	return color.NRGBA{}, false
}

// SaveSnapshot writes a map of the window to path, scaled up by scale with
// nearest neighbor filtering. The format follows the file extension.
func SaveSnapshot(chunks ColumnReader, path string, scale int) error {
	var img image.Image = Snapshot(chunks)
	if scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "save snapshot %s", path)
	}
	return nil
}
