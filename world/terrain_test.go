package world

import (
	"testing"
)

func TestSampleDeterministic(t *testing.T) {
	t1 := NewTerrain(testConfig(12345, 3))
	t2 := NewTerrain(testConfig(12345, 3))
	for i := 0; i < 100; i++ {
		x, z := float64(i)*0.1, float64(i)*0.2
		if t1.Sample(x, z) != t2.Sample(x, z) {
			t.Fatalf("Sample not deterministic at (%f, %f)", x, z)
		}
	}
}

func TestSampleRange(t *testing.T) {
	tr := NewTerrain(testConfig(42, 3))
	for i := 0; i < 5000; i++ {
		x := float64(i)*0.37 - 500
		z := float64(i)*0.53 - 500
		if v := tr.Sample(x, z); v < -1 || v > 1 {
			t.Fatalf("Sample(%f, %f) = %f, out of [-1,1]", x, z, v)
		}
	}
}

func TestHeightRange(t *testing.T) {
	tr := NewTerrain(testConfig(7, 3))
	for x := 0; x < 1024; x += 17 {
		for z := 0; z < 1024; z += 23 {
			if h := tr.Height(x, z); h < 0 || h > 64 {
				t.Fatalf("Height(%d, %d) = %f", x, z, h)
			}
		}
	}
}

func TestDifferentSeedsDifferentTerrain(t *testing.T) {
	t1 := NewTerrain(testConfig(1, 3))
	t2 := NewTerrain(testConfig(2, 3))
	different := false
	for i := 0; i < 100; i++ {
		x, z := float64(i)*0.1, float64(i)*0.2
		if t1.Sample(x, z) != t2.Sample(x, z) {
			different = true
			break
		}
	}
	if !different {
		t.Error("different seeds should produce different terrain")
	}
}

func TestBandTableOpenEnded(t *testing.T) {
	cfg := DefaultConfig()
	table, err := cfg.bandTable()
	if err != nil {
		t.Fatal(err)
	}
	cases := map[int]Type{0: TypeSand, 35: TypeSand, 36: TypeGrass, 48: TypeGrass, 49: TypeRock, 55: TypeRock, 56: TypeIce, 64: TypeIce, 127: TypeIce, 10000: TypeIce}
	for y, want := range cases {
		if got := table.classify(y); got != want {
			t.Errorf("classify(%d) = %v, want %v", y, got, want)
		}
	}
}
