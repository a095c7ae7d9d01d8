package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func radian(angle float32) float32 {
	return mgl32.DegToRad(angle)
}

func sin(radian float32) float32 {
	return float32(math.Sin(float64(radian)))
}

func cos(radian float32) float32 {
	return float32(math.Cos(float64(radian)))
}

func mix(a, b, factor float32) float32 {
	return a*(1-factor) + factor*b
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
