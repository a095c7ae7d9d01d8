package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain is a fractal (fBm) height field over OpenSimplex noise. The same
// seed always yields the same field.
type Terrain struct {
	octaves     []*opensimplex.Noise
	frequency   float64
	persistence float64
	lacunarity  float64
	scale       float64

	divisor     float64
	heightScale float64
}

func NewTerrain(cfg Config) *Terrain {
	t := &Terrain{
		frequency:   cfg.Frequency,
		persistence: cfg.Persistence,
		lacunarity:  cfg.Lacunarity,
		divisor:     cfg.Divisor,
		heightScale: cfg.HeightScale,
	}
	amp, total := 1.0, 0.0
	for i := 0; i < cfg.Octaves; i++ {
		t.octaves = append(t.octaves, opensimplex.NewWithSeed(int64(cfg.Seed)+int64(i)))
		total += amp
		amp *= cfg.Persistence
	}
	t.scale = 1 / total
	return t
}

// Sample returns the raw noise value at (x, z), in [-1, 1].
func (t *Terrain) Sample(x, z float64) float64 {
	x, z = x*t.frequency, z*t.frequency
	amp, sum := 1.0, 0.0
	for _, n := range t.octaves {
		sum += n.Eval2(x, z) * amp
		amp *= t.persistence
		x *= t.lacunarity
		z *= t.lacunarity
	}
	v := sum * t.scale
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return v
}

// Height maps a world block coordinate to the terrain surface height in
// blocks, in [0, 2*heightScale].
func (t *Terrain) Height(worldX, worldZ int) float64 {
	s := t.Sample(float64(worldX)/t.divisor, float64(worldZ)/t.divisor)
	return (s + 1.0) * t.heightScale
}

type band struct {
	from int
	ty   Type
}

// bandTable is ordered by ascending from and starts at 0, the last band is
// open ended.
type bandTable []band

func (bt bandTable) classify(y int) Type {
	ty := bt[0].ty
	for _, b := range bt[1:] {
		if y < b.from {
			break
		}
		ty = b.ty
	}
	return ty
}
