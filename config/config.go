package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/solver"
)

var configValidate = validator.New()

// Block is one orbital group.
type Block struct {
	Name    string `yaml:"name" validate:"required"`
	Indices []int  `yaml:"indices" validate:"required,min=1"`
}

// Orbital names one (block, inner index) pair.
type Orbital struct {
	Block string `yaml:"block" validate:"required"`
	Index int    `yaml:"index"`
}

// Term is a two-orbital coefficient: t·c†_A c_B (hopping) or U·n_A n_B (density).
type Term struct {
	A     Orbital `yaml:"a"`
	B     Orbital `yaml:"b"`
	Value float64 `yaml:"value"`
}

// Hamiltonian is the local Hamiltonian.
type Hamiltonian struct {
	Hopping []Term `yaml:"hopping" validate:"dive"`
	Density []Term `yaml:"density" validate:"dive"`
}

// Bath is the local level matrix and discrete bath of one block.
type Bath struct {
	Block     string      `yaml:"block" validate:"required"`
	Eps       [][]float64 `yaml:"eps"`
	Levels    []float64   `yaml:"levels"`
	Couplings [][]float64 `yaml:"couplings"`
}

// Output lists the files written by the command line.
type Output struct {
	Results string `yaml:"results"`
	Metrics string `yaml:"metrics"`
}

// Config is a complete run description.
type Config struct {
	Beta   float64       `yaml:"beta" validate:"gt=0"`
	NIw    int           `yaml:"n_iw" validate:"gt=0"`
	NTau   int           `yaml:"n_tau" validate:"gt=1"`
	Blocks []Block       `yaml:"blocks" validate:"required,min=1,dive"`
	HLoc   Hamiltonian   `yaml:"h_loc"`
	Bath   []Bath        `yaml:"bath" validate:"dive"`
	Solve  solver.Params `yaml:"solve"`
	Out    Output        `yaml:"output"`
}

// Default returns a Config holding the default solve parameters and
// output file names.
func Default() *Config {
	return &Config{
		Solve: solver.DefaultParams(),
		Out:   Output{Results: "results.yaml"},
	}
}

// Load reads path, applies the environment overlay and validates.
// Errors: file and YAML errors; ErrInvalidConfig.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return Parse(raw)
}

// Parse decodes YAML over the defaults, applies the environment overlay and validates.
func Parse(raw []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config.Parse: %w", err)
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// applyEnv overrides sampling parameters from CTHYB_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"CTHYB_N_CYCLES":        &c.Solve.NCycles,
		"CTHYB_LENGTH_CYCLE":    &c.Solve.LengthCycle,
		"CTHYB_N_WARMUP_CYCLES": &c.Solve.NWarmupCycles,
		"CTHYB_MAX_TIME":        &c.Solve.MaxTime,
		"CTHYB_VERBOSITY":       &c.Solve.Verbosity,
		"CTHYB_WORKERS":         &c.Solve.Workers,
	}
	for name, dst := range ints {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
			}
			*dst = n
		}
	}
	if v, ok := lookup("CTHYB_RANDOM_SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CTHYB_RANDOM_SEED: %v", ErrInvalidConfig, err)
		}
		c.Solve.RandomSeed = n
	}
	if v, ok := lookup("CTHYB_USE_TRACE_ESTIMATOR"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: CTHYB_USE_TRACE_ESTIMATOR: %v", ErrInvalidConfig, err)
		}
		c.Solve.UseTraceEstimator = b
	}

	return nil
}

// Validate checks struct tags, the mesh precondition, the block structure
// and that every bath and Hamiltonian term names a known orbital.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := hyb.CheckMesh(c.NIw, c.NTau); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s, err := c.Structure()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	known := func(o Orbital) error {
		b, err := s.Lookup(o.Block)
		if err != nil {
			return err
		}
		for _, ix := range s.Block(b).Indices {
			if ix == o.Index {
				return nil
			}
		}
		return fmt.Errorf("orbital %s/%d: %w", o.Block, o.Index, gf.ErrUnknownBlock)
	}
	for _, t := range append(append([]Term(nil), c.HLoc.Hopping...), c.HLoc.Density...) {
		for _, o := range []Orbital{t.A, t.B} {
			if err := known(o); err != nil {
				return fmt.Errorf("%w: h_loc: %w", ErrInvalidConfig, err)
			}
		}
	}
	for _, b := range c.Bath {
		if _, err := s.Lookup(b.Block); err != nil {
			return fmt.Errorf("%w: bath: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// Structure builds the block structure.
func (c *Config) Structure() (gf.Structure, error) {
	blocks := make([]gf.Block, len(c.Blocks))
	for i, b := range c.Blocks {
		blocks[i] = gf.Block{Name: b.Name, Indices: append([]int(nil), b.Indices...)}
	}

	return gf.NewStructure(blocks...)
}

// Hamiltonian builds h_loc = Σ t c†_A c_B + Σ U n_A n_B. Hopping terms are
// taken as given; list both directions for a hermitian result.
func (c *Config) Hamiltonian() operators.Expression {
	h := operators.Expression{}
	for _, t := range c.HLoc.Hopping {
		h = h.Add(operators.CDag(t.A.Block, t.A.Index).Mul(operators.C(t.B.Block, t.B.Index)).Scale(t.Value))
	}
	for _, t := range c.HLoc.Density {
		h = h.Add(operators.N(t.A.Block, t.A.Index).Mul(operators.N(t.B.Block, t.B.Index)).Scale(t.Value))
	}

	return h
}

// WeissField builds G0 on mesh from the bath section. Blocks without a bath
// entry get ε = 0 and no bath levels.
//
// Errors: hyb.ErrShapeMismatch for inconsistent matrix sizes.
func (c *Config) WeissField(s gf.Structure, mesh gf.FreqMesh) (*gf.FreqBlockGF, error) {
	eps := make([][]float64, s.Len())
	baths := make([]hyb.Bath, s.Len())
	for b := range eps {
		d := s.Size(b)
		eps[b] = make([]float64, d*d)
	}
	for _, bc := range c.Bath {
		b, err := s.Lookup(bc.Block)
		if err != nil {
			return nil, err
		}
		d := s.Size(b)
		if bc.Eps != nil {
			if len(bc.Eps) != d {
				return nil, fmt.Errorf("bath %q: eps: %w", bc.Block, hyb.ErrShapeMismatch)
			}
			for i, row := range bc.Eps {
				if len(row) != d {
					return nil, fmt.Errorf("bath %q: eps: %w", bc.Block, hyb.ErrShapeMismatch)
				}
				copy(eps[b][i*d:(i+1)*d], row)
			}
		}
		baths[b] = hyb.Bath{Levels: bc.Levels, Couplings: bc.Couplings}
	}

	return hyb.WeissFieldFromBath(s, mesh, eps, baths)
}
