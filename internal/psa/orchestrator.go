package psa

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/cardecon/hfpsa/internal/markov"
	"github.com/cardecon/hfpsa/internal/params"
	"github.com/cardecon/hfpsa/internal/platform/errors"
)

const tracerName = "github.com/cardecon/hfpsa/internal/psa"

// Config fixes everything about a PSA run except the draws themselves.
type Config struct {
	// Repeats is the number of resampled repeats.
	Repeats int
	// HorizonMonths is the simulated horizon per repeat (default 60).
	HorizonMonths int
	// CohortSize is the simulated population per arm (default 100000).
	CohortSize float64
	// DiscountCost and DiscountQALY are annual discount multipliers,
	// applied independently (default 1.03 each).
	DiscountCost float64
	DiscountQALY float64
	// Inflation is the annual inflation multiplier used both to index the
	// cost bounds to ReferenceYear and to adjust monthly cost totals
	// (default 1.019).
	Inflation float64
	// ReferenceYear is the cost-indexing year (default 2019).
	ReferenceYear int
	// StartState is where the whole cohort begins (default Hospital: the
	// model follows patients from an index admission).
	StartState markov.State
	// Seed drives every random stream; repeat r uses Seed XOR r.
	Seed uint64
	// Workers bounds parallel repeat execution (default GOMAXPROCS).
	Workers int
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.HorizonMonths == 0 {
		c.HorizonMonths = 60
	}
	if c.CohortSize == 0 {
		c.CohortSize = 100000
	}
	if c.DiscountCost == 0 {
		c.DiscountCost = 1.03
	}
	if c.DiscountQALY == 0 {
		c.DiscountQALY = 1.03
	}
	if c.Inflation == 0 {
		c.Inflation = 1.019
	}
	if c.ReferenceYear == 0 {
		c.ReferenceYear = 2019
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// validate rejects impossible configurations before any simulation work.
func (c Config) validate() error {
	switch {
	case c.Repeats <= 0:
		return errors.New(errors.CodeConfigInvalid, fmt.Sprintf("repeats must be positive, got %d", c.Repeats))
	case c.HorizonMonths <= 0:
		return errors.New(errors.CodeConfigInvalid, fmt.Sprintf("horizon must be positive, got %d", c.HorizonMonths))
	case c.CohortSize <= 0:
		return errors.New(errors.CodeConfigInvalid, fmt.Sprintf("cohort size must be positive, got %g", c.CohortSize))
	case c.DiscountCost <= 0 || c.DiscountQALY <= 0 || c.Inflation <= 0:
		return errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("discount and inflation multipliers must be positive, got cost=%g qaly=%g inflation=%g",
				c.DiscountCost, c.DiscountQALY, c.Inflation))
	case c.ReferenceYear < params.PricingYear:
		return errors.New(errors.CodeConfigInvalid,
			fmt.Sprintf("reference year %d predates pricing year %d", c.ReferenceYear, params.PricingYear))
	case c.StartState < 0 || c.StartState >= markov.NumStates || c.StartState == markov.Dead:
		return errors.New(errors.CodeConfigInvalid, fmt.Sprintf("start state %v is not a live model state", c.StartState))
	case c.Workers < 0:
		return errors.New(errors.CodeConfigInvalid, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	return nil
}

// Results carries the accumulated monthly tables of both arms plus the
// effective (defaulted) configuration that produced them.
type Results struct {
	Config       Config
	Control      *ArmTable
	Intervention *ArmTable
}

// Engine orchestrates a full PSA run.
type Engine struct {
	cfg    Config
	tracer trace.Tracer
}

// New validates the configuration and builds an engine. Configuration
// problems fail here, once, before any repeat runs.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run executes every repeat and returns the accumulated tables.
//
// Repeats are statistically independent: each one derives its own random
// source from Seed XOR the repeat index, draws a fresh parameter set,
// builds both arms' matrices, and simulates both arms over the horizon.
// Workers write into disjoint row ranges of the pre-sized tables.
//
// Any parameterization error (invalid bounds, negative residual,
// non-stochastic row) aborts the whole run: the bounds are fixed across
// repeats, so one poisoned combination is a persistent modeling bug, not
// a sampling fluke.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	ctx, span := e.tracer.Start(ctx, "psa.run", trace.WithAttributes(
		attribute.Int("psa.repeats", e.cfg.Repeats),
		attribute.Int("psa.horizon_months", e.cfg.HorizonMonths),
		attribute.Int("psa.workers", e.cfg.Workers),
	))
	defer span.End()

	control, err := NewArmTable(e.cfg.Repeats, e.cfg.HorizonMonths)
	if err != nil {
		return nil, err
	}
	intervention, err := NewArmTable(e.cfg.Repeats, e.cfg.HorizonMonths)
	if err != nil {
		return nil, err
	}

	var initial markov.Vector
	initial[e.cfg.StartState] = e.cfg.CohortSize

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for r := 0; r < e.cfg.Repeats; r++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return e.runRepeat(r, initial, control, intervention)
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &Results{
		Config:       e.cfg,
		Control:      control,
		Intervention: intervention,
	}, nil
}

// runRepeat executes one repeat for both arms.
func (e *Engine) runRepeat(repeat int, initial markov.Vector, control, intervention *ArmTable) error {
	src := rand.NewSource(e.cfg.Seed ^ uint64(repeat))
	sampler, err := params.NewSampler(src, e.cfg.Inflation, e.cfg.ReferenceYear)
	if err != nil {
		return err
	}
	set, err := sampler.Draw()
	if err != nil {
		return fmt.Errorf("repeat %d: %w", repeat, err)
	}

	disc := markov.Discounting{
		Cost:      e.cfg.DiscountCost,
		QALY:      e.cfg.DiscountQALY,
		Inflation: e.cfg.Inflation,
	}

	arms := []struct {
		transitions markov.Transitions
		cost        markov.Vector
		table       *ArmTable
	}{
		{set.Control, set.ControlCost, control},
		{set.Intervention, set.InterventionCost, intervention},
	}
	for _, arm := range arms {
		matrix, err := markov.BuildMatrix(arm.transitions)
		if err != nil {
			return fmt.Errorf("repeat %d: %w", repeat, err)
		}
		months, err := markov.Simulate(markov.ArmInputs{
			Matrix: matrix,
			QALY:   set.QALY,
			Cost:   arm.cost,
		}, initial, e.cfg.HorizonMonths, disc)
		if err != nil {
			return fmt.Errorf("repeat %d: %w", repeat, err)
		}
		if err := arm.table.SetRepeat(repeat, months); err != nil {
			return fmt.Errorf("repeat %d: %w", repeat, err)
		}
	}
	return nil
}
