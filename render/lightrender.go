package render

import (
	"github.com/faiface/glhf"
	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/scene"
	"github.com/humboldt-xie/tinyterrain/world"
)

const lightSize = 12

// LightRender draws the sun and the moon as cubes orbiting the camera.
type LightRender struct {
	win    *glfw.Window
	chunks *world.ChunkStore
	shader *glhf.Shader
	sun    *Mesh
	moon   *Mesh
}

func NewLightRender(win *glfw.Window, chunks *world.ChunkStore, sky *scene.Sky) (*LightRender, error) {
	var err error
	r := &LightRender{win: win, chunks: chunks}
	all := scene.FaceFilter{true, true, true, true, true, true}
	mainthread.Call(func() {
		r.shader, err = glhf.NewShader(glhf.AttrFormat{
			glhf.Attr{Name: "pos", Type: glhf.Vec3},
			glhf.Attr{Name: "color", Type: glhf.Vec4},
			glhf.Attr{Name: "normal", Type: glhf.Vec3},
		}, glhf.AttrFormat{
			glhf.Attr{Name: "matrix", Type: glhf.Mat4},
		}, lightVertexSource, lightFragmentSource)
		if err != nil {
			return
		}
		sun := sky.Sun().Color.Vec4(1)
		moon := sky.Moon().Color.Vec4(1)
		r.sun = NewMesh(r.shader, makeCubeData(nil, mgl32.Vec3{}, lightSize, sun, all), true)
		r.moon = NewMesh(r.shader, makeCubeData(nil, mgl32.Vec3{}, lightSize, moon, all), true)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LightRender) drawLight(mesh *Mesh, mat mgl32.Mat4, light scene.Light, camera mgl32.Vec3) {
	// the orbit follows the camera so the sky never runs out
	p := camera.Add(light.Position)
	r.shader.SetUniformAttr(0, mat.Mul4(mgl32.Translate3D(p.X(), p.Y(), p.Z())))
	mesh.Draw()
}

func (r *LightRender) Draw(camera *scene.Camera, sky *scene.Sky) {
	mat := Projection(r.win, r.chunks).Mul4(camera.Matrix())
	r.shader.Begin()
	r.drawLight(r.sun, mat, sky.Sun(), camera.Pos())
	r.drawLight(r.moon, mat, sky.Moon(), camera.Pos())
	r.shader.End()
}
