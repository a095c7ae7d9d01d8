package scene

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
)

func testStore(t *testing.T, seed uint32, radius int) *world.ChunkStore {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.Seed = seed
	cfg.Radius = radius
	s, err := world.NewChunkStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func waitIdle(t *testing.T, s *world.ChunkStore) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for !s.Idle() {
		if time.Now().After(deadline) {
			t.Fatalf("chunk store never became idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSkyColor(t *testing.T) {
	cases := []struct {
		sun  mgl32.Vec3
		want mgl32.Vec3
	}{
		{mgl32.Vec3{0, 200, 0}, SkyDay},
		{mgl32.Vec3{0, -200, 0}, SkyNight},
		{mgl32.Vec3{200, 0, 0}, SkyNight},
		{mgl32.Vec3{0, 100.9, 0}, mgl32.Vec3{
			(12 + (135-12)*0.5) / 255,
			(20 + (206-20)*0.5) / 255,
			(69 + (235-69)*0.5) / 255,
		}},
	}
	for _, c := range cases {
		if got := SkyColor(c.sun); !got.ApproxEqualThreshold(c.want, 1e-5) {
			t.Errorf("SkyColor(%v) = %v, want %v", c.sun, got, c.want)
		}
	}
}

func TestSkyOrbit(t *testing.T) {
	sky := NewSky(time.Minute)
	if sun := sky.Sun().Position; !sun.ApproxEqualThreshold(mgl32.Vec3{200, 0, 0}, 1e-3) {
		t.Fatalf("dawn sun at %v", sun)
	}
	sky.Update(15 * time.Second)
	sun := sky.Sun().Position
	if !sun.ApproxEqualThreshold(mgl32.Vec3{0, 200, 0}, 1e-3) {
		t.Fatalf("noon sun at %v", sun)
	}
	if !sky.Moon().Position.ApproxEqualThreshold(sun.Mul(-1), 1e-5) {
		t.Errorf("moon %v not opposite sun %v", sky.Moon().Position, sun)
	}
	if !sky.Color().ApproxEqualThreshold(SkyDay, 1e-5) {
		t.Errorf("noon sky %v", sky.Color())
	}
	sky.SetTime(0.75)
	if !sky.Color().ApproxEqualThreshold(SkyNight, 1e-5) {
		t.Errorf("midnight sky %v", sky.Color())
	}
	if sky.Ambient() < 0.3 || sky.Ambient() > 0.31 {
		t.Errorf("midnight ambient %v", sky.Ambient())
	}
	// a full day wraps around
	sky.SetTime(0)
	sky.Update(time.Minute)
	if !sky.Sun().Position.ApproxEqualThreshold(mgl32.Vec3{200, 0, 0}, 1e-3) {
		t.Errorf("sun after a day at %v", sky.Sun().Position)
	}
}

func TestOverlay(t *testing.T) {
	o := NewOverlay(mgl32.Vec3{1.5, 40, 33.25}, world.Point{X: 1, Z: 33}, world.Point{X: 0, Z: 2})
	want := "player: 1.50 40.00 33.25\nblock: (1, 33)\nchunk: (0, 2)"
	if o.String() != want {
		t.Fatalf("overlay %q, want %q", o.String(), want)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 50, 0}, 0)
	for i := 0; i < 20; i++ {
		c.ChangeAngle(0, 100, float64(i))
	}
	if c.Ry != 89 {
		t.Fatalf("pitch %v", c.Ry)
	}
	c.ChangeAngle(500, 0, 30)
	if c.Rx != -90 {
		t.Fatalf("warp jump applied, yaw %v", c.Rx)
	}
}

func TestCameraMoveAndInterpolate(t *testing.T) {
	c := NewCamera(mgl32.Vec3{10, 50, 10}, 0)
	// yaw -90 looks down -z
	c.Move(MoveForward, 1, 1)
	if !c.Pos().ApproxEqualThreshold(mgl32.Vec3{10, 50, 5}, 1e-4) {
		t.Fatalf("moved to %v", c.Pos())
	}
	mid := c.Interpolated(1)
	if !mid.Vec3.ApproxEqualThreshold(mgl32.Vec3{10, 50, 10}, 1e-4) {
		t.Errorf("interpolated start %v", mid.Vec3)
	}
	end := c.Interpolated(5)
	if !end.Vec3.ApproxEqualThreshold(c.Pos(), 1e-4) {
		t.Errorf("interpolated end %v", end.Vec3)
	}
	c.Move(MoveUp, 1, 2)
	if c.Pos().Y() != 55 {
		t.Errorf("up moved to %v", c.Pos())
	}
}

func TestSpawnPosition(t *testing.T) {
	cfg := world.DefaultConfig()
	cfg.HeightScale = 60
	gen, err := world.NewGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, b := SpawnPosition(42, gen), SpawnPosition(42, gen)
	if a != b {
		t.Fatalf("spawn not deterministic: %v %v", a, b)
	}
	for seed := uint32(0); seed < 50; seed++ {
		p := SpawnPosition(seed, gen)
		if p.X() < 2000 || p.X() >= 4000 || p.Z() < 2000 || p.Z() >= 4000 {
			t.Fatalf("seed %d spawn %v", seed, p)
		}
		x, z := int(p.X()), int(p.Z())
		if int(p.Y()) != gen.SurfaceY(x, z)+2 {
			t.Fatalf("seed %d spawn %v, surface %d", seed, p, gen.SurfaceY(x, z))
		}
		if float64(p.Y()) <= gen.HeightAt(x, z) {
			t.Fatalf("seed %d spawn %v under ground at %v", seed, p, gen.HeightAt(x, z))
		}
	}
}

func TestBuildInstancesCullsHiddenBlocks(t *testing.T) {
	gen, err := world.NewGenerator(world.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	key := world.Key{X: 3, Z: 3}
	column, _ := gen.Column(key)
	instances := BuildInstances(column, key)
	if len(instances) == 0 {
		t.Fatalf("no instances")
	}
	active := 0
	for _, c := range column {
		c.RangeBlocks(func(id world.Vec3, b world.Block) { active++ })
	}
	if len(instances) >= active {
		t.Errorf("%d instances for %d active blocks, nothing culled", len(instances), active)
	}
	seen := make(map[mgl32.Vec3]bool)
	for _, in := range instances {
		if seen[in.Position] {
			t.Fatalf("duplicate instance at %v", in.Position)
		}
		seen[in.Position] = true
		if !in.Faces.Any() || in.Color.W() == 0 {
			t.Fatalf("instance %+v", in)
		}
		id := world.Vec3{X: int(in.Position.X()), Y: int(in.Position.Y()), Z: int(in.Position.Z())}
		b, ok := world.ColumnBlock(column, key, id)
		if !ok || !b.IsActive() {
			t.Fatalf("instance on inactive block %v", id)
		}
		if in.Faces[FaceDown] && id.Y == 0 {
			t.Fatalf("bottom face of the world drawn at %v", id)
		}
	}
	// the floor layer never shows an up face under a solid block
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkWidth; z++ {
			id := world.Vec3{X: 48 + x, Y: 0, Z: 48 + z}
			above, _ := world.ColumnBlock(column, key, id.Up())
			if above.IsActive() && !above.IsTransparent() && seen[mgl32.Vec3{float32(id.X), 0, float32(id.Z)}] {
				in := findInstance(instances, id)
				if in.Faces[FaceUp] {
					t.Fatalf("up face under a solid block at %v", id)
				}
			}
		}
	}
}

func findInstance(instances []Instance, id world.Vec3) Instance {
	for _, in := range instances {
		if in.Position == (mgl32.Vec3{float32(id.X), float32(id.Y), float32(id.Z)}) {
			return in
		}
	}
	return Instance{}
}

func TestSceneFollowsStore(t *testing.T) {
	store := testStore(t, 42, 1)
	defer store.Close()
	sc := New(store, time.Minute)

	pos := mgl32.Vec3{20, 60, 20}
	sc.Update(0, pos)
	waitIdle(t, store)
	added, removed := sc.Update(time.Second, pos)
	if len(added) != 9 || len(removed) != 0 {
		t.Fatalf("added %v removed %v", added, removed)
	}
	if st := sc.Stat(); st.Columns != 9 || st.Pending != 0 || st.Instances == 0 {
		t.Fatalf("stat %+v", st)
	}
	if added, removed := sc.Update(time.Second, pos); added != nil || removed != nil {
		t.Fatalf("steady state rebuilt %v %v", added, removed)
	}
	if sc.Overlay().Chunk != "chunk: (1, 1)" {
		t.Errorf("overlay %v", sc.Overlay())
	}

	far := mgl32.Vec3{200, 60, 200}
	_, removed = sc.Update(0, far)
	if len(removed) != 9 {
		t.Fatalf("removed %v after move", removed)
	}
	waitIdle(t, store)
	sc.Update(0, far)
	sc.Range(func(key world.Key, instances []Instance) bool {
		if !key.Within(world.Key{X: 11, Z: 11}, world.Key{X: 13, Z: 13}) {
			t.Errorf("stale column %v", key)
		}
		return true
	})
	if _, ok := sc.Instances(world.Key{X: 12, Z: 12}); !ok {
		t.Errorf("center column missing")
	}
}

func TestSceneBuildsInBatches(t *testing.T) {
	store := testStore(t, 3, 3)
	defer store.Close()
	sc := New(store, 0)

	pos := mgl32.Vec3{100, 60, 100}
	sc.Update(0, pos)
	waitIdle(t, store)
	added, _ := sc.Update(0, pos)
	if len(added) != batchBuildColumns {
		t.Fatalf("first batch %d", len(added))
	}
	// nearest first
	if added[0] != (world.Key{X: 6, Z: 6}) {
		t.Errorf("first column %v", added[0])
	}
	total := len(added)
	for i := 0; i < 10 && total < 49; i++ {
		added, _ = sc.Update(0, pos)
		total += len(added)
	}
	if total != 49 {
		t.Fatalf("built %d columns", total)
	}
}

func TestSnapshot(t *testing.T) {
	store := testStore(t, 42, 1)
	defer store.Close()
	store.Update(mgl32.Vec3{})
	waitIdle(t, store)

	img := Snapshot(store)
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("snapshot bounds %v", b)
	}
	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			if img.NRGBAAt(x, z).A != 255 {
				t.Fatalf("pixel (%d,%d) empty", x, z)
			}
		}
	}

	// the window grows while columns load, unloaded parts stay transparent
	store.Update(mgl32.Vec3{16, 0, 16})
	img = Snapshot(store)
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 48 {
		t.Fatalf("snapshot bounds %v", b)
	}

	dir, err := ioutil.TempDir("", "snapshot")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "map.png")
	if err := SaveSnapshot(store, path, 2); err != nil {
		t.Fatal(err)
	}
	saved, err := imaging.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if b := saved.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Fatalf("saved bounds %v", b)
	}
	if err := SaveSnapshot(store, filepath.Join(dir, "map.unknown"), 1); err == nil {
		t.Errorf("unknown format saved")
	}
}
