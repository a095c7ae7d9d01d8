package render

import (
	"log"
	"sync"
	"time"

	"github.com/faiface/glhf"
	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/scene"
	"github.com/humboldt-xie/tinyterrain/world"
)

// BlockRender keeps one mesh per column of the scene and draws the ones
// inside the view frustum.
type BlockRender struct {
	win    *glfw.Window
	scene  *scene.Scene
	shader *glhf.Shader

	facePool *sync.Pool

	mutex     sync.Mutex
	meshcache map[world.Key]*ColumnMesh

	stat Stat
}

func NewBlockRender(win *glfw.Window, sc *scene.Scene) (*BlockRender, error) {
	var err error
	r := &BlockRender{
		win:       win,
		scene:     sc,
		meshcache: make(map[world.Key]*ColumnMesh),
	}

	mainthread.Call(func() {
		r.shader, err = glhf.NewShader(glhf.AttrFormat{
			glhf.Attr{Name: "pos", Type: glhf.Vec3},
			glhf.Attr{Name: "color", Type: glhf.Vec4},
			glhf.Attr{Name: "normal", Type: glhf.Vec3},
		}, glhf.AttrFormat{
			glhf.Attr{Name: "matrix", Type: glhf.Mat4},
			glhf.Attr{Name: "camera", Type: glhf.Vec3},
			glhf.Attr{Name: "fogdis", Type: glhf.Float},
			glhf.Attr{Name: "lightdir", Type: glhf.Vec3},
			glhf.Attr{Name: "ambient", Type: glhf.Float},
			glhf.Attr{Name: "skycolor", Type: glhf.Vec3},
		}, blockVertexSource, blockFragmentSource)
	})
	if err != nil {
		return nil, err
	}
	r.facePool = &sync.Pool{
		New: func() interface{} {
			size := 500000
			log.Printf("new face buffer %d", size)
			return make([]float32, 0, size)
		},
	}
	return r, nil
}

// makeColumnMesh builds the vertex data off the main thread and uploads it
// on the main thread. Must not be called from the main thread.
func (r *BlockRender) makeColumnMesh(id world.Key) *Mesh {
	start := time.Now()
	instances, _ := r.scene.Instances(id)
	facedata := r.facePool.Get().([]float32)
	defer func() {
		r.facePool.Put(facedata[:0])
	}()
	for _, in := range instances {
		facedata = makeInstanceData(facedata, in)
	}
	mesh := NewMesh(r.shader, facedata, false)
	mesh.Id = id
	log.Printf("column faces: %v %d %fs", id, mesh.Faces(), float64(time.Since(start))/float64(time.Second))
	return mesh
}

// Sync applies a scene update to the mesh cache.
func (r *BlockRender) Sync(added, removed []world.Key) {
	for _, id := range removed {
		r.mutex.Lock()
		cm, ok := r.meshcache[id]
		delete(r.meshcache, id)
		r.mutex.Unlock()
		if ok {
			log.Printf("remove cache %v", id)
			cm.Close()
		}
	}
	for _, id := range added {
		cm := NewColumnMesh(r, id)
		r.mutex.Lock()
		old, ok := r.meshcache[id]
		r.meshcache[id] = cm
		r.mutex.Unlock()
		if ok {
			old.Close()
		}
	}
}

func (r *BlockRender) get3dmat(camera *scene.Camera) mgl32.Mat4 {
	return Projection(r.win, r.scene.Chunks()).Mul4(camera.Matrix())
}

// Draw runs on the main thread.
func (r *BlockRender) Draw(camera *scene.Camera) {
	sky := r.scene.Sky()
	chunks := r.scene.Chunks()
	mat := r.get3dmat(camera)

	r.shader.Begin()
	defer r.shader.End()
	r.shader.SetUniformAttr(0, mat)
	r.shader.SetUniformAttr(1, camera.Pos())
	r.shader.SetUniformAttr(2, float32(chunks.Radius()+1)*world.ChunkWidth)
	r.shader.SetUniformAttr(3, sky.Sun().Position.Normalize())
	r.shader.SetUniformAttr(4, sky.Ambient())
	r.shader.SetUniformAttr(5, sky.Color())

	planes := frustumPlanes(&mat)
	stat := Stat{PendingColumns: r.scene.Stat().Pending}
	r.mutex.Lock()
	for id, cm := range r.meshcache {
		stat.CacheColumns++
		if cm.mesh == nil || !isColumnVisible(planes, id) {
			continue
		}
		stat.RenderColumns++
		stat.Faces += cm.Faces()
		cm.mesh.Draw()
	}
	r.mutex.Unlock()
	r.stat = stat
}

func (r *BlockRender) Stat() Stat {
	return r.stat
}

func (r *BlockRender) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for id, cm := range r.meshcache {
		cm.Close()
		delete(r.meshcache, id)
	}
}
