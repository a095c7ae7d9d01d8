package render

import (
	"github.com/faiface/glhf"
	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/scene"
	"github.com/humboldt-xie/tinyterrain/world"
)

func radian(angle float32) float32 {
	return mgl32.DegToRad(angle)
}

func columnKey(x, z int) world.Key {
	return world.Key{X: uint32(x), Z: uint32(z)}
}

// Projection is the perspective used by every 3d pass. Far is the edge of
// the loaded window.
func Projection(win *glfw.Window, chunks *world.ChunkStore) mgl32.Mat4 {
	width, height := win.GetFramebufferSize()
	if height == 0 {
		height = 1
	}
	far := float32((chunks.Radius() + 1) * world.ChunkWidth)
	if far < scene.OrbitRadius*2 {
		far = scene.OrbitRadius * 2
	}
	return mgl32.Perspective(radian(45), float32(width)/float32(height), 0.1, far)
}

func frustumPlanes(mat *mgl32.Mat4) []mgl32.Vec4 {
	c1, c2, c3, c4 := mat.Rows()
	return []mgl32.Vec4{
		c4.Add(c1), // left
		c4.Sub(c1), // right
		c4.Sub(c2), // top
		c4.Add(c2), // bottom
		c4.Add(c3), // front
		c4.Sub(c3), // back
	}
}

func isColumnVisible(planes []mgl32.Vec4, key world.Key) bool {
	o := key.Origin()
	p := mgl32.Vec3{float32(o.X), 0, float32(o.Z)}
	const m = world.ChunkWidth
	const h = world.ColumnHeight

	points := []mgl32.Vec3{
		{p.X(), 0, p.Z()},
		{p.X() + m, 0, p.Z()},
		{p.X() + m, 0, p.Z() + m},
		{p.X(), 0, p.Z() + m},

		{p.X(), h, p.Z()},
		{p.X() + m, h, p.Z()},
		{p.X() + m, h, p.Z() + m},
		{p.X(), h, p.Z() + m},
	}
	for _, plane := range planes {
		var in, out int
		for _, point := range points {
			if plane.Dot(point.Vec4(1)) < 0 {
				out++
			} else {
				in++
			}
			if in != 0 && out != 0 {
				break
			}
		}
		if in == 0 {
			return false
		}
	}
	return true
}

type Stat struct {
	Faces          int
	CacheColumns   int
	RenderColumns  int
	PendingColumns int
}

type Lines struct {
	vao, vbo uint32
	shader   *glhf.Shader
	nvertex  int
}

func NewLines(shader *glhf.Shader, data []float32) *Lines {
	l := new(Lines)
	l.shader = shader
	l.nvertex = len(data) / (shader.VertexFormat().Size() / 4)
	gl.GenVertexArrays(1, &l.vao)
	gl.GenBuffers(1, &l.vbo)
	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, l.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	bindVertexFormat(shader)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return l
}

func (l *Lines) Draw(mat mgl32.Mat4, color mgl32.Vec4) {
	if l.vao != 0 {
		l.shader.SetUniformAttr(0, mat)
		l.shader.SetUniformAttr(1, color)
		gl.BindVertexArray(l.vao)
		gl.DrawArrays(gl.LINES, 0, int32(l.nvertex))
		gl.BindVertexArray(0)
	}
}

func (l *Lines) Release() {
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
		gl.DeleteBuffers(1, &l.vbo)
		l.vao = 0
		l.vbo = 0
	}
}

// LineRender draws the crosshair and, when enabled, the outline of the
// loaded window.
type LineRender struct {
	win        *glfw.Window
	chunks     *world.ChunkStore
	shader     *glhf.Shader
	cross      *Lines
	box        *Lines
	ShowBorder bool
}

func NewLineRender(win *glfw.Window, chunks *world.ChunkStore) (*LineRender, error) {
	r := &LineRender{win: win, chunks: chunks}
	var err error
	mainthread.Call(func() {
		r.shader, err = glhf.NewShader(glhf.AttrFormat{
			glhf.Attr{Name: "pos", Type: glhf.Vec3},
		}, glhf.AttrFormat{
			glhf.Attr{Name: "matrix", Type: glhf.Mat4},
			glhf.Attr{Name: "linecolor", Type: glhf.Vec4},
		}, lineVertexSource, lineFragmentSource)

		if err != nil {
			return
		}
		r.cross = makeCross(r.shader)
		r.box = NewLines(r.shader, makeWireFrameData(nil, scene.FaceFilter{true, true, true, true, true, true}))
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LineRender) drawCross() {
	width, height := r.win.GetFramebufferSize()
	project := mgl32.Ortho2D(0, float32(width), float32(height), 0)
	model := mgl32.Translate3D(float32(width/2), float32(height/2), 0)
	model = model.Mul4(mgl32.Scale3D(float32(height/30), float32(height/30), 0))
	r.cross.Draw(project.Mul4(model), mgl32.Vec4{1, 1, 1, 1})
}

func (r *LineRender) drawBorder(mat mgl32.Mat4) {
	start, end := r.chunks.Window()
	o := start.Origin()
	size := mgl32.Vec3{
		float32(int(end.X-start.X+1) * world.ChunkWidth),
		world.ColumnHeight,
		float32(int(end.Z-start.Z+1) * world.ChunkWidth),
	}
	mat = mat.Mul4(mgl32.Translate3D(float32(o.X), 0, float32(o.Z)))
	mat = mat.Mul4(mgl32.Scale3D(size.X(), size.Y(), size.Z()))
	r.box.Draw(mat, mgl32.Vec4{1, 1, 0, 1})
}

func (r *LineRender) Draw(camera *scene.Camera) {
	mat := Projection(r.win, r.chunks).Mul4(camera.Matrix())

	r.shader.Begin()
	r.drawCross()
	if r.ShowBorder {
		r.drawBorder(mat)
	}
	r.shader.End()
}

func makeCross(shader *glhf.Shader) *Lines {
	return NewLines(shader, []float32{
		-0.5, 0, 0, 0.5, 0, 0,
		0, -0.5, 0, 0, 0.5, 0,
	})
}
