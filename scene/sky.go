package scene

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// OrbitRadius is the distance of the sun and moon from the world origin.
	OrbitRadius = 200
	DefaultDay  = 10 * time.Minute
)

var (
	SkyDay   = mgl32.Vec3{135.0 / 255, 206.0 / 255, 235.0 / 255}
	SkyNight = mgl32.Vec3{12.0 / 255, 20.0 / 255, 69.0 / 255}
)

// SkyColor blends night into day by the height of the sun. The sun height
// is truncated to whole blocks.
func SkyColor(sun mgl32.Vec3) mgl32.Vec3 {
	y := float32(int(sun.Y()))
	frac := clamp01(y / OrbitRadius)
	return mgl32.Vec3{
		mix(SkyNight.X(), SkyDay.X(), frac),
		mix(SkyNight.Y(), SkyDay.Y(), frac),
		mix(SkyNight.Z(), SkyDay.Z(), frac),
	}
}

type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Sky tracks the time of day. The sun starts on the horizon at dawn and
// the moon is always opposite it.
type Sky struct {
	day     time.Duration
	elapsed time.Duration
	sun     Light
	moon    Light
	color   mgl32.Vec3
}

func NewSky(day time.Duration) *Sky {
	if day <= 0 {
		day = DefaultDay
	}
	s := &Sky{
		day:  day,
		sun:  Light{Color: mgl32.Vec3{1, 0.95, 0.8}},
		moon: Light{Color: mgl32.Vec3{0.3, 0.35, 0.5}},
	}
	s.Update(0)
	return s
}

// Update advances the clock by dt.
func (s *Sky) Update(dt time.Duration) {
	s.elapsed = (s.elapsed + dt) % s.day
	angle := 2 * math.Pi * float64(s.elapsed) / float64(s.day)
	s.sun.Position = mgl32.Vec3{
		float32(math.Cos(angle) * OrbitRadius),
		float32(math.Sin(angle) * OrbitRadius),
		0,
	}
	s.moon.Position = s.sun.Position.Mul(-1)
	s.color = SkyColor(s.sun.Position)
}

// SetTime jumps to a point in the day, 0 is dawn and 0.5 dusk.
func (s *Sky) SetTime(frac float64) {
	s.elapsed = 0
	s.Update(time.Duration(frac * float64(s.day)))
}

func (s *Sky) Sun() Light {
	return s.sun
}

func (s *Sky) Moon() Light {
	return s.moon
}

func (s *Sky) Color() mgl32.Vec3 {
	return s.color
}

// Ambient is the light level applied to block colors, never fully dark.
func (s *Sky) Ambient() float32 {
	return 0.3 + 0.7*clamp01(s.sun.Position.Y()/OrbitRadius)
}
