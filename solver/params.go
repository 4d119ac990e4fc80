package solver

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/cthyb/mc"
)

// DefaultRefreshEvery is the number of cycles between recomputations of the
// inverse hybridization matrices and trace caches from scratch.
const DefaultRefreshEvery = 100

var paramsValidate = validator.New()

// Params are the runtime parameters of Solve.
type Params struct {
	// NCycles is the number of measured cycles per worker; required.
	NCycles int `yaml:"n_cycles" validate:"gt=0"`
	// LengthCycle is the number of move attempts between measurements.
	LengthCycle int `yaml:"length_cycle" validate:"gt=0"`
	// NWarmupCycles is the number of discarded cycles per worker.
	NWarmupCycles int `yaml:"n_warmup_cycles" validate:"gte=0"`
	// RandomSeed is the base seed; worker w uses RandomSeed + 928374·w.
	// Every value, 0 included, is used as given.
	RandomSeed int64 `yaml:"random_seed"`
	// RandomName selects the generator family (alfg, pcg, chacha8); empty is alfg.
	RandomName string `yaml:"random_name" validate:"omitempty,oneof=alfg pcg chacha8"`
	// MaxTime is the wall-time budget in seconds; -1 is unbounded.
	MaxTime int `yaml:"max_time" validate:"gte=-1"`
	// Verbosity selects the log level of the command line (0 quiet … 3 debug).
	Verbosity int `yaml:"verbosity" validate:"gte=0,lte=3"`

	UseTraceEstimator bool `yaml:"use_trace_estimator"`
	MeasureGTau       bool `yaml:"measure_g_tau"`
	MeasurePertOrder  bool `yaml:"measure_pert_order"`
	// MakeHistograms records segment-length and trace-ratio histograms of
	// every insert and remove move.
	MakeHistograms bool `yaml:"make_histograms"`

	// Workers is the number of independent chains run concurrently.
	Workers int `yaml:"workers" validate:"gte=1,lte=1024"`
	// RefreshEvery is the cycle period of full recomputation; 0 disables it.
	RefreshEvery int `yaml:"refresh_every" validate:"gte=0"`
}

// DefaultParams returns the defaults; NCycles must still be set.
func DefaultParams() Params {
	return Params{
		LengthCycle:   mc.DefaultLengthCycle,
		NWarmupCycles: mc.DefaultWarmupCycles,
		RandomSeed:    mc.DefaultSeed,
		MaxTime:       -1,
		Verbosity:     1,
		MeasureGTau:   true,
		Workers:       1,
		RefreshEvery:  DefaultRefreshEvery,
	}
}

// Validate checks the struct tags.
// Errors: ErrInvalidParams wrapping the validator report.
func (p Params) Validate() error {
	if err := paramsValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	return nil
}

// budget converts MaxTime to a duration; 0 means unbounded.
func (p Params) budget() time.Duration {
	if p.MaxTime < 0 {
		return 0
	}

	return time.Duration(p.MaxTime) * time.Second
}
