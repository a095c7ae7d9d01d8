package scene

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// Position is a camera pose at time T. Rx is yaw and Ry pitch, in degrees.
type Position struct {
	mgl32.Vec3
	Rx, Ry float32
	T      float64
}

func (p *Position) Front() mgl32.Vec3 {
	front := mgl32.Vec3{
		cos(radian(p.Ry)) * cos(radian(p.Rx)),
		sin(radian(p.Ry)),
		cos(radian(p.Ry)) * sin(radian(p.Rx)),
	}
	return front.Normalize()
}

// Camera is a free flying first person camera.
type Camera struct {
	Position
	Sens   float32
	pre    Position
	flying bool
}

// Ground finds the first free block above the terrain surface.
type Ground interface {
	SurfaceY(worldX, worldZ int) int
}

// SpawnPosition picks a starting point for a new session, the same one for
// every run with seed, two blocks above the ground.
func SpawnPosition(seed uint32, ground Ground) mgl32.Vec3 {
	r := rand.New(rand.NewSource(int64(seed)))
	x := 2000 + 2000*r.Float32()
	z := 2000 + 2000*r.Float32()
	y := ground.SurfaceY(int(x), int(z)) + 2
	return mgl32.Vec3{x, float32(y), z}
}

func NewCamera(pos mgl32.Vec3, now float64) *Camera {
	c := &Camera{
		Sens:   0.14,
		flying: true,
	}
	c.Position = Position{Vec3: pos, T: now, Rx: -90, Ry: 0}
	c.pre = c.Position
	return c
}

func (c *Camera) Move(dir Movement, delta float32, now float64) {
	if c.flying {
		delta = 5 * delta
	}
	c.pre = c.Position
	switch dir {
	case MoveForward:
		c.Position.Vec3 = c.Position.Add(c.Front().Mul(delta))
	case MoveBackward:
		c.Position.Vec3 = c.Position.Sub(c.Front().Mul(delta))
	case MoveLeft:
		c.Position.Vec3 = c.Position.Sub(c.Right().Mul(delta))
	case MoveRight:
		c.Position.Vec3 = c.Position.Add(c.Right().Mul(delta))
	case MoveUp:
		c.Position.Vec3 = c.Position.Add(mgl32.Vec3{0, delta, 0})
	case MoveDown:
		c.Position.Vec3 = c.Position.Sub(mgl32.Vec3{0, delta, 0})
	}
	c.Position.T = now
}

// ChangeAngle applies a mouse delta. Large jumps from cursor warps are
// ignored and pitch is kept inside (-90, 90).
func (c *Camera) ChangeAngle(dx, dy float32, now float64) {
	if mgl32.Abs(dx) > 200 || mgl32.Abs(dy) > 200 {
		return
	}
	c.pre = c.Position
	c.Position.T = now
	c.Position.Rx += dx * c.Sens
	c.Position.Ry += dy * c.Sens
	if c.Position.Ry > 89 {
		c.Position.Ry = 89
	}
	if c.Position.Ry < -89 {
		c.Position.Ry = -89
	}
}

func (c *Camera) Matrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position.Vec3, c.Position.Add(c.Front()), c.Up())
}

// 线性插值计算相机位置
func (c *Camera) Interpolated(now float64) Position {
	t1 := c.Position.T - c.pre.T
	t := float32(1)
	if t1 > 0 {
		t = clamp01(float32((now - c.Position.T) / t1))
	}
	return Position{
		Vec3: mgl32.Vec3{
			mix(c.pre.X(), c.Position.X(), t),
			mix(c.pre.Y(), c.Position.Y(), t),
			mix(c.pre.Z(), c.Position.Z(), t),
		},
		Rx: mix(c.pre.Rx, c.Position.Rx, t),
		Ry: mix(c.pre.Ry, c.Position.Ry, t),
		T:  now,
	}
}

func (c *Camera) Restore(state Position) {
	c.Position = state
	c.pre = state
}

func (c *Camera) SetPos(pos mgl32.Vec3, now float64) {
	c.pre = c.Position
	c.Position.Vec3 = pos
	c.Position.T = now
}

func (c *Camera) Pos() mgl32.Vec3 {
	return c.Position.Vec3
}
func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Front()).Normalize()
}
func (c *Camera) Right() mgl32.Vec3 {
	front := c.Front()
	return front.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *Camera) FlipFlying() {
	c.flying = !c.flying
}

func (c *Camera) Flying() bool {
	return c.flying
}
