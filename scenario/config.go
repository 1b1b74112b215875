package scenario

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ivanpozdin/patchsim/geometry"
)

// point and rect mirror the YAML shape of a geometry.XY / geometry.Rectangle
// so viper's mapstructure decoding doesn't need to know about the geometry
// package's unexported invariants (NewRectangle panics on bad input; the
// raw form just holds the numbers until FromYAML has checked their sizes and
// fileConfig.toScenario converts them).
type point struct {
	X int `yaml:"x" mapstructure:"x"`
	Y int `yaml:"y" mapstructure:"y"`
}

type rect struct {
	TopLeft point `yaml:"topLeft" mapstructure:"topLeft"`
	Size    point `yaml:"size" mapstructure:"size"`
}

type queryConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Area rect   `yaml:"area" mapstructure:"area"`
}

// fileConfig is the on-disk YAML shape. A separate type from Scenario keeps
// decoding tolerant of raw ints/points while Scenario itself stays built
// from validated geometry types.
type fileConfig struct {
	GridSize          point         `yaml:"gridSize" mapstructure:"gridSize"`
	Obstacles         []rect        `yaml:"obstacles" mapstructure:"obstacles"`
	InitialPopulation []point       `yaml:"initialPopulation" mapstructure:"initialPopulation"`
	Partition         Partition     `yaml:"partition" mapstructure:"partition"`
	Parameters        Parameters    `yaml:"parameters" mapstructure:"parameters"`
	Queries           []queryConfig `yaml:"queries" mapstructure:"queries"`
	Ticks             int           `yaml:"ticks" mapstructure:"ticks"`
	TraceEnabled      bool          `yaml:"traceEnabled" mapstructure:"traceEnabled"`
}

// FromYAML loads and validates a Scenario from a YAML file. A fresh
// viper.New() is used per call rather than viper's package-level singleton:
// a long-running process (the dashboard, tests loading multiple fixture
// scenarios) needs to load more than one independent config without one
// load's state leaking into the next.
func FromYAML(path string) (*Scenario, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", path, err)
	}

	var fc fileConfig
	if err := vp.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("scenario: decoding %s: %w", path, err)
	}

	for _, r := range fc.Obstacles {
		if r.Size.X <= 0 || r.Size.Y <= 0 {
			return nil, fmt.Errorf("scenario: %s: obstacle size must be positive, got %+v", path, r.Size)
		}
	}
	for _, q := range fc.Queries {
		if q.Area.Size.X <= 0 || q.Area.Size.Y <= 0 {
			return nil, fmt.Errorf("scenario: %s: query %q area size must be positive, got %+v", path, q.Name, q.Area.Size)
		}
	}

	s := fc.toScenario()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (fc fileConfig) toScenario() *Scenario {
	obstacles := make([]geometry.Rectangle, 0, len(fc.Obstacles))
	for _, r := range fc.Obstacles {
		obstacles = append(obstacles, geometry.NewRectangle(
			geometry.XY{X: r.TopLeft.X, Y: r.TopLeft.Y},
			geometry.XY{X: r.Size.X, Y: r.Size.Y},
		))
	}

	population := make([]geometry.XY, 0, len(fc.InitialPopulation))
	for _, p := range fc.InitialPopulation {
		population = append(population, geometry.XY{X: p.X, Y: p.Y})
	}

	queries := make([]Query, 0, len(fc.Queries))
	for _, q := range fc.Queries {
		queries = append(queries, Query{
			Name: q.Name,
			Area: geometry.NewRectangle(
				geometry.XY{X: q.Area.TopLeft.X, Y: q.Area.TopLeft.Y},
				geometry.XY{X: q.Area.Size.X, Y: q.Area.Size.Y},
			),
		})
	}

	return &Scenario{
		GridSize:          geometry.XY{X: fc.GridSize.X, Y: fc.GridSize.Y},
		Obstacles:         obstacles,
		InitialPopulation: population,
		Partition:         fc.Partition,
		Parameters:        fc.Parameters,
		Queries:           queries,
		Ticks:             fc.Ticks,
		TraceEnabled:      fc.TraceEnabled,
	}
}

// ToYAML renders s back to the on-disk YAML shape FromYAML reads, letting
// an operator inspect the effective scenario (including any values a
// future config layer might default in) before a run.
func (s *Scenario) ToYAML() ([]byte, error) {
	return yaml.Marshal(s.toFileConfig())
}

func (s *Scenario) toFileConfig() fileConfig {
	obstacles := make([]rect, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		obstacles = append(obstacles, rect{
			TopLeft: point{X: o.TopLeft.X, Y: o.TopLeft.Y},
			Size:    point{X: o.Size.X, Y: o.Size.Y},
		})
	}

	population := make([]point, 0, len(s.InitialPopulation))
	for _, p := range s.InitialPopulation {
		population = append(population, point{X: p.X, Y: p.Y})
	}

	queries := make([]queryConfig, 0, len(s.Queries))
	for _, q := range s.Queries {
		queries = append(queries, queryConfig{
			Name: q.Name,
			Area: rect{
				TopLeft: point{X: q.Area.TopLeft.X, Y: q.Area.TopLeft.Y},
				Size:    point{X: q.Area.Size.X, Y: q.Area.Size.Y},
			},
		})
	}

	return fileConfig{
		GridSize:          point{X: s.GridSize.X, Y: s.GridSize.Y},
		Obstacles:         obstacles,
		InitialPopulation: population,
		Partition:         s.Partition,
		Parameters:        s.Parameters,
		Queries:           queries,
		Ticks:             s.Ticks,
		TraceEnabled:      s.TraceEnabled,
	}
}
