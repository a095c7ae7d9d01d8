package world

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// BandConfig starts a height band at From. A band covers every y from its
// From up to the next band's From, the last band has no upper bound.
type BandConfig struct {
	From int    `yaml:"from"`
	Type string `yaml:"type"`
}

// MaxRadius bounds the retention window to (2*MaxRadius+1)^2 columns.
const MaxRadius = 32

type Config struct {
	Seed        uint32       `yaml:"seed"`
	Radius      int          `yaml:"radius"`
	Divisor     float64      `yaml:"divisor"`
	SeaLevel    int          `yaml:"sea_level"`
	HeightScale float64      `yaml:"height_scale"`
	Octaves     int          `yaml:"octaves"`
	Frequency   float64      `yaml:"frequency"`
	Persistence float64      `yaml:"persistence"`
	Lacunarity  float64      `yaml:"lacunarity"`
	Bands       []BandConfig `yaml:"bands"`
	HeightCache int          `yaml:"height_cache"`
}

func DefaultConfig() Config {
	return Config{
		Seed:        0,
		Radius:      3,
		Divisor:     256,
		SeaLevel:    32,
		HeightScale: 32,
		Octaves:     14,
		Frequency:   1.0,
		Persistence: 0.5,
		Lacunarity:  2.208984375,
		Bands: []BandConfig{
			{From: 0, Type: "sand"},
			{From: 36, Type: "grass"},
			{From: 49, Type: "rock"},
			{From: 56, Type: "ice"},
		},
		HeightCache: 256,
	}
}

func (c *Config) Validate() error {
	if c.Radius < 0 {
		return errors.Errorf("radius must not be negative, got %d", c.Radius)
	}
	if c.Radius > MaxRadius {
		return errors.Errorf("radius must be at most %d, got %d", MaxRadius, c.Radius)
	}
	if c.Divisor <= 0 {
		return errors.Errorf("divisor must be positive, got %v", c.Divisor)
	}
	if c.Octaves <= 0 {
		return errors.Errorf("octaves must be positive, got %d", c.Octaves)
	}
	if c.HeightCache <= 0 {
		return errors.Errorf("height_cache must be positive, got %d", c.HeightCache)
	}
	_, err := c.bandTable()
	return err
}

func (c *Config) bandTable() (bandTable, error) {
	if len(c.Bands) == 0 {
		return nil, errors.New("no height bands configured")
	}
	table := make(bandTable, 0, len(c.Bands))
	for i, b := range c.Bands {
		t, err := ParseType(b.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "band %d", i)
		}
		if t == TypeInactive {
			return nil, errors.Errorf("band %d: inactive is not a terrain band", i)
		}
		if i == 0 && b.From != 0 {
			return nil, errors.Errorf("first band must start at 0, got %d", b.From)
		}
		if i > 0 && b.From <= c.Bands[i-1].From {
			return nil, errors.Errorf("band %d starts at %d, not above %d", i, b.From, c.Bands[i-1].From)
		}
		table = append(table, band{from: b.From, ty: t})
	}
	return table, nil
}

// LoadConfig reads a YAML terrain config. Fields missing from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read terrain config")
	}
	if err := ParseConfig(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}
