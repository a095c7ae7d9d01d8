package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/humboldt-xie/tinyterrain/render"
	"github.com/humboldt-xie/tinyterrain/scene"
	"github.com/humboldt-xie/tinyterrain/world"
)

func initGL(w, h int) *glfw.Window {
	err := glfw.Init()
	if err != nil {
		log.Fatal(err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, gl.TRUE)

	win, err := glfw.CreateWindow(w, h, "tinyterrain", nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	win.MakeContextCurrent()
	err = gl.Init()
	if err != nil {
		log.Fatal(err)
	}
	glfw.SwapInterval(1) // enable vsync
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.BLEND)
	return win
}

type FPS struct {
	lastUpdate time.Time
	cnt        int
	fps        int
}

func (f *FPS) Update() {
	f.cnt++
	now := time.Now()
	p := now.Sub(f.lastUpdate)
	if p >= time.Second {
		f.fps = int(float64(f.cnt) / p.Seconds())
		f.cnt = 0
		f.lastUpdate = now
	}
}

func (f *FPS) Fps() int {
	return f.fps
}

type Game struct {
	win *glfw.Window

	camera   *scene.Camera
	lx, ly   float64
	prevtime float64

	scene       *scene.Scene
	blockRender *render.BlockRender
	lineRender  *render.LineRender
	lightRender *render.LightRender

	snapshotPath string
	snapshot     bool
	fps          FPS

	exclusiveMouse bool
	closed         bool
}

func NewGame(w, h int, sc *scene.Scene, sess *world.Session, snapshotPath string) (*Game, error) {
	var err error
	game := &Game{
		scene:        sc,
		snapshotPath: snapshotPath,
	}

	mainthread.Call(func() {
		win := initGL(w, h)
		win.SetMouseButtonCallback(game.onMouseButtonCallback)
		win.SetCursorPosCallback(game.onCursorPosCallback)
		win.SetFramebufferSizeCallback(game.onFrameBufferSizeCallback)
		win.SetKeyCallback(game.onKeyCallback)
		game.win = win
		game.prevtime = glfw.GetTime()
		game.camera = scene.NewCamera(sess.Position, game.prevtime)
		if sess.Rx != 0 || sess.Ry != 0 {
			game.camera.Restore(scene.Position{
				Vec3: sess.Position,
				Rx:   sess.Rx,
				Ry:   sess.Ry,
				T:    game.prevtime,
			})
		}
	})
	game.blockRender, err = render.NewBlockRender(game.win, sc)
	if err != nil {
		return nil, err
	}
	game.lineRender, err = render.NewLineRender(game.win, sc.Chunks())
	if err != nil {
		return nil, err
	}
	game.lightRender, err = render.NewLightRender(game.win, sc.Chunks(), sc.Sky())
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (g *Game) setExclusiveMouse(exclusive bool) {
	if exclusive {
		g.win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		g.win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	g.exclusiveMouse = exclusive
}

func (g *Game) onMouseButtonCallback(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if !g.exclusiveMouse {
		g.setExclusiveMouse(true)
	}
}

func (g *Game) onFrameBufferSizeCallback(window *glfw.Window, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (g *Game) onCursorPosCallback(win *glfw.Window, xpos float64, ypos float64) {
	if !g.exclusiveMouse {
		return
	}
	if g.lx == 0 && g.ly == 0 {
		g.lx, g.ly = xpos, ypos
		return
	}
	dx, dy := xpos-g.lx, g.ly-ypos
	g.lx, g.ly = xpos, ypos
	g.camera.ChangeAngle(float32(dx), float32(dy), glfw.GetTime())
}

func (g *Game) onKeyCallback(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyTab:
		g.camera.FlipFlying()
	case glfw.KeyB:
		g.lineRender.ShowBorder = !g.lineRender.ShowBorder
	case glfw.KeyP:
		g.snapshot = true
	}
}

func (g *Game) handleKeyInput(dt float64) {
	speed := float32(dt * 10)
	now := glfw.GetTime()
	if g.win.GetKey(glfw.KeyEscape) == glfw.Press {
		g.setExclusiveMouse(false)
	}
	keys := []struct {
		key glfw.Key
		dir scene.Movement
	}{
		{glfw.KeyW, scene.MoveForward},
		{glfw.KeyS, scene.MoveBackward},
		{glfw.KeyA, scene.MoveLeft},
		{glfw.KeyD, scene.MoveRight},
		{glfw.KeySpace, scene.MoveUp},
		{glfw.KeyLeftShift, scene.MoveDown},
	}
	for _, k := range keys {
		if g.win.GetKey(k.key) == glfw.Press {
			g.camera.Move(k.dir, speed, now)
		}
	}
}

func (g *Game) ShouldClose() bool {
	return g.closed
}

// Session is the current camera state, ready to be saved.
func (g *Game) Session(sess *world.Session) *world.Session {
	out := *sess
	out.Position = g.camera.Pos()
	out.Rx = g.camera.Rx
	out.Ry = g.camera.Ry
	return &out
}

func (g *Game) renderStat() {
	g.fps.Update()
	stat := g.blockRender.Stat()
	chunks := g.scene.Chunks()
	cs := chunks.Stat()
	title := fmt.Sprintf("%s [%d/%d %d %d] [%d/%d ev:%d fail:%d rev:%d] %d",
		strings.Join(g.scene.Overlay().Lines(), " "),
		stat.RenderColumns, stat.CacheColumns, stat.PendingColumns, stat.Faces,
		cs.Completed, cs.Dispatched, cs.Evicted, cs.Failed, chunks.Revision(), g.fps.Fps())
	g.win.SetTitle(title)
}

func (g *Game) takeSnapshot() {
	path := g.snapshotPath
	if path == "" {
		path = fmt.Sprintf("snapshot-%d.png", time.Now().Unix())
	}
	if err := scene.SaveSnapshot(g.scene.Chunks(), path, 2); err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	log.Printf("snapshot saved to %s", path)
}

// Update runs one frame. Input and drawing happen on the main thread, the
// scene and the mesh uploads in between run on the caller's goroutine.
func (g *Game) Update() {
	var dt float64
	mainthread.Call(func() {
		now := glfw.GetTime()
		dt = now - g.prevtime
		g.prevtime = now
		if dt > 0.02 {
			dt = 0.02
		}
		g.handleKeyInput(dt)
	})

	added, removed := g.scene.Update(time.Duration(dt*float64(time.Second)), g.camera.Pos())
	g.blockRender.Sync(added, removed)
	if g.snapshot {
		g.snapshot = false
		g.takeSnapshot()
	}

	mainthread.Call(func() {
		sky := g.scene.Sky().Color()
		gl.ClearColor(sky.X(), sky.Y(), sky.Z(), 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		g.lightRender.Draw(g.camera, g.scene.Sky())
		g.blockRender.Draw(g.camera)
		g.lineRender.Draw(g.camera)
		g.renderStat()

		g.win.SwapBuffers()
		glfw.PollEvents()
		g.closed = g.win.ShouldClose()
	})
}

func (g *Game) Close() {
	g.blockRender.Close()
	mainthread.Call(func() {
		g.win.Destroy()
		glfw.Terminate()
	})
}
