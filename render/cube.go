package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/scene"
)

// vertex layout: pos(3) color(4) normal(3)
const vertexFloats = 10

// cubeFaces lists the corners of each face of a unit cube centered on the
// origin, counter clockwise seen from outside, in scene face order.
var cubeFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	scene.FaceLeft: {mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {-0.5, -0.5, +0.5}, {-0.5, +0.5, +0.5}, {-0.5, +0.5, -0.5},
	}},
	scene.FaceRight: {mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{
		{+0.5, -0.5, +0.5}, {+0.5, -0.5, -0.5}, {+0.5, +0.5, -0.5}, {+0.5, +0.5, +0.5},
	}},
	scene.FaceUp: {mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{
		{-0.5, +0.5, +0.5}, {+0.5, +0.5, +0.5}, {+0.5, +0.5, -0.5}, {-0.5, +0.5, -0.5},
	}},
	scene.FaceDown: {mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {+0.5, -0.5, -0.5}, {+0.5, -0.5, +0.5}, {-0.5, -0.5, +0.5},
	}},
	scene.FaceFront: {mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{
		{-0.5, -0.5, +0.5}, {+0.5, -0.5, +0.5}, {+0.5, +0.5, +0.5}, {-0.5, +0.5, +0.5},
	}},
	scene.FaceBack: {mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{
		{+0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, +0.5, -0.5}, {+0.5, +0.5, -0.5},
	}},
}

// two triangles per face
var quadOrder = [6]int{0, 1, 2, 2, 3, 0}

// makeCubeData appends the visible faces of a cube of edge size centered
// on pos.
func makeCubeData(vertices []float32, pos mgl32.Vec3, size float32, color mgl32.Vec4, show scene.FaceFilter) []float32 {
	for i, face := range cubeFaces {
		if !show[i] {
			continue
		}
		n := face.normal
		for _, j := range quadOrder {
			p := pos.Add(face.corners[j].Mul(size))
			vertices = append(vertices,
				p.X(), p.Y(), p.Z(),
				color.X(), color.Y(), color.Z(), color.W(),
				n.X(), n.Y(), n.Z(),
			)
		}
	}
	return vertices
}

func makeInstanceData(vertices []float32, in scene.Instance) []float32 {
	return makeCubeData(vertices, in.Position, 1, in.Color, in.Faces)
}

// makeWireFrameData appends the edges of the shown faces of a unit cube
// with its low corner on the origin, as line segments.
func makeWireFrameData(vertices []float32, show scene.FaceFilter) []float32 {
	half := mgl32.Vec3{0.5, 0.5, 0.5}
	for i, face := range cubeFaces {
		if !show[i] {
			continue
		}
		for j := 0; j < 4; j++ {
			a := face.corners[j].Add(half)
			b := face.corners[(j+1)%4].Add(half)
			vertices = append(vertices, a.X(), a.Y(), a.Z(), b.X(), b.Y(), b.Z())
		}
	}
	return vertices
}
