package config

import (
	"io/ioutil"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/humboldt-xie/tinyterrain/world"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// BlockConfig overrides how a material is drawn. Color components are in
// [0, 1], alpha defaults to 1.
type BlockConfig struct {
	Type          string    `yaml:"type"`
	Color         []float32 `yaml:"color"`
	IsTransparent *bool     `yaml:"is_transparent"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Config struct {
	Terrain   world.Config  `yaml:"terrain"`
	Blocks    []BlockConfig `yaml:"blocks"`
	Window    WindowConfig  `yaml:"window"`
	DayLength float64       `yaml:"day_length"` // seconds
	DB        string        `yaml:"db"`
	Server    string        `yaml:"server"`
	Listen    string        `yaml:"listen"`
	Snapshot  string        `yaml:"snapshot"`

	// SeedSet reports whether the seed came from a flag or the file.
	SeedSet bool `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Terrain:   world.DefaultConfig(),
		Window:    WindowConfig{Width: 800, Height: 600},
		DayLength: 600,
		DB:        "tinyterrain.db",
	}
}

func (c *Config) Day() time.Duration {
	return time.Duration(c.DayLength * float64(time.Second))
}

func (c *Config) Validate() error {
	if err := c.Terrain.Validate(); err != nil {
		return errors.Wrap(err, "terrain")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("bad window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.DayLength <= 0 {
		return errors.Errorf("day_length must be positive, got %v", c.DayLength)
	}
	for i, b := range c.Blocks {
		if _, err := b.BlockType(); err != nil {
			return errors.Wrapf(err, "block %d", i)
		}
	}
	return nil
}

func (b *BlockConfig) BlockType() (*world.BlockType, error) {
	t, err := world.ParseType(b.Type)
	if err != nil {
		return nil, err
	}
	bt := world.NewBlock(t).BlockType()
	out := &world.BlockType{Type: t}
	if bt != nil {
		*out = *bt
	}
	switch len(b.Color) {
	case 0:
	case 3, 4:
		c := mgl32.Vec4{b.Color[0], b.Color[1], b.Color[2], 1}
		if len(b.Color) == 4 {
			c[3] = b.Color[3]
		}
		for _, v := range c {
			if v < 0 || v > 1 {
				return nil, errors.Errorf("%s color %v out of [0,1]", b.Type, b.Color)
			}
		}
		out.Color = c
	default:
		return nil, errors.Errorf("%s color needs 3 or 4 components, got %d", b.Type, len(b.Color))
	}
	if b.IsTransparent != nil {
		out.IsTransparent = *b.IsTransparent
	}
	return out, nil
}

// RegisterBlocks installs the configured materials into the block table.
func (c *Config) RegisterBlocks() error {
	for _, b := range c.Blocks {
		bt, err := b.BlockType()
		if err != nil {
			return err
		}
		world.RegisterBlockType(bt)
		log.Printf("add block %s %v", bt.Type, bt.Color)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	var probe struct {
		Terrain struct {
			Seed *uint32 `yaml:"seed"`
		} `yaml:"terrain"`
	}
	if err := yaml.Unmarshal(data, &probe); err == nil {
		cfg.SeedSet = probe.Terrain.Seed != nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge applies file values to cfg for every setting that was not given
// explicitly on the command line. explicit holds the names of the flags
// that were set.
func Merge(cfg *Config, fromFile *Config, explicit map[string]bool) {
	seed, radius := cfg.Terrain.Seed, cfg.Terrain.Radius
	cfg.Terrain = fromFile.Terrain
	if explicit["seed"] {
		cfg.Terrain.Seed = seed
	} else {
		cfg.SeedSet = fromFile.SeedSet
	}
	if explicit["r"] {
		cfg.Terrain.Radius = radius
	}
	if !explicit["db"] {
		cfg.DB = fromFile.DB
	}
	if !explicit["s"] {
		cfg.Server = fromFile.Server
	}
	if !explicit["l"] {
		cfg.Listen = fromFile.Listen
	}
	if !explicit["snapshot"] {
		cfg.Snapshot = fromFile.Snapshot
	}
	cfg.Blocks = fromFile.Blocks
	cfg.Window = fromFile.Window
	cfg.DayLength = fromFile.DayLength
}
