package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
terrain:
  seed: 0
  radius: 4
window: {width: 1024, height: 768}
day_length: 120
db: view.db
listen: ":8421"
blocks:
  - {type: grass, color: [0.1, 0.8, 0.1]}
  - {type: water, color: [0, 0, 1, 0.5], is_transparent: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SeedSet || cfg.Terrain.Seed != 0 || cfg.Terrain.Radius != 4 {
		t.Fatalf("terrain %+v seed set %v", cfg.Terrain, cfg.SeedSet)
	}
	if cfg.Terrain.Octaves != 14 || cfg.Terrain.Divisor != 256 {
		t.Fatalf("terrain defaults lost: %+v", cfg.Terrain)
	}
	if cfg.Window.Width != 1024 || cfg.Day() != 2*time.Minute || cfg.DB != "view.db" || cfg.Listen != ":8421" {
		t.Fatalf("parsed %+v", cfg)
	}
	bt, err := cfg.Blocks[1].BlockType()
	if err != nil {
		t.Fatal(err)
	}
	if bt.Type != world.TypeWater || bt.Color != (mgl32.Vec4{0, 0, 1, 0.5}) || !bt.IsTransparent {
		t.Fatalf("water %+v", bt)
	}
	bt, _ = cfg.Blocks[0].BlockType()
	if bt.Color.W() != 1 || bt.IsTransparent {
		t.Fatalf("grass %+v", bt)
	}
}

func TestSeedUnset(t *testing.T) {
	cfg, err := ParseConfig([]byte("terrain: {radius: 2}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SeedSet {
		t.Fatalf("seed reported as set")
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":         "terrain: [",
		"bad terrain":    "terrain: {divisor: -1}",
		"bad window":     "window: {width: 0, height: 10}",
		"bad day":        "day_length: 0",
		"unknown block":  "blocks: [{type: lava}]",
		"short color":    "blocks: [{type: rock, color: [1, 1]}]",
		"color in bytes": "blocks: [{type: rock, color: [128, 128, 128]}]",
	}
	for name, doc := range cases {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestMerge(t *testing.T) {
	fromFile := DefaultConfig()
	fromFile.Terrain.Seed = 7
	fromFile.Terrain.Radius = 5
	fromFile.Terrain.SeaLevel = 20
	fromFile.SeedSet = true
	fromFile.DB = "file.db"
	fromFile.Server = "remote:1"
	fromFile.DayLength = 60

	cfg := DefaultConfig()
	cfg.Terrain.Seed = 99
	cfg.Terrain.Radius = 2
	cfg.SeedSet = true
	cfg.DB = "flag.db"
	Merge(cfg, fromFile, map[string]bool{"seed": true, "db": true})

	if cfg.Terrain.Seed != 99 || !cfg.SeedSet {
		t.Errorf("explicit seed overridden: %d", cfg.Terrain.Seed)
	}
	if cfg.Terrain.Radius != 5 || cfg.Terrain.SeaLevel != 20 {
		t.Errorf("file terrain not applied: %+v", cfg.Terrain)
	}
	if cfg.DB != "flag.db" || cfg.Server != "remote:1" || cfg.DayLength != 60 {
		t.Errorf("merged %+v", cfg)
	}
}

func TestRegisterBlocks(t *testing.T) {
	orig := *world.NewBlock(world.TypeIce).BlockType()
	defer world.RegisterBlockType(&orig)

	cfg := DefaultConfig()
	cfg.Blocks = []BlockConfig{{Type: "ice", Color: []float32{0.5, 0.5, 0.5}}}
	if err := cfg.RegisterBlocks(); err != nil {
		t.Fatal(err)
	}
	c, ok := world.NewBlock(world.TypeIce).Color()
	if !ok || c != (mgl32.Vec4{0.5, 0.5, 0.5, 1}) {
		t.Fatalf("ice color %v", c)
	}
}

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "tinyterrain.yaml")
	if err := ioutil.WriteFile(path, []byte("server: example.org\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "example.org" || cfg.DB != "tinyterrain.db" {
		t.Fatalf("loaded %+v", cfg)
	}
	if _, err := LoadConfig(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Errorf("missing file loaded")
	}
}
