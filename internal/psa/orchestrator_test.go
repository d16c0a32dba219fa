package psa

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/cardecon/hfpsa/internal/markov"
	platformerrors "github.com/cardecon/hfpsa/internal/platform/errors"
)

func testConfig() Config {
	return Config{
		Repeats:       25,
		HorizonMonths: 60,
		CohortSize:    100000,
		DiscountCost:  1.03,
		DiscountQALY:  1.03,
		Inflation:     1.019,
		ReferenceYear: 2019,
		StartState:    markov.Hospital,
		Seed:          42,
		Workers:       4,
	}
}

func mustRun(t *testing.T, cfg Config) *Results {
	t.Helper()
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunProducesFullTables(t *testing.T) {
	cfg := testConfig()
	res := mustRun(t, cfg)

	wantRows := cfg.Repeats * cfg.HorizonMonths
	if res.Control.Len() != wantRows || res.Intervention.Len() != wantRows {
		t.Fatalf("table sizes %d/%d, want %d", res.Control.Len(), res.Intervention.Len(), wantRows)
	}

	for _, table := range []*ArmTable{res.Control, res.Intervention} {
		for row := 0; row < table.Len(); row++ {
			total := 0.0
			for s := 0; s < markov.NumStates; s++ {
				total += table.Counts[s][row]
			}
			if math.Abs(total-cfg.CohortSize) > 1e-6 {
				t.Fatalf("row %d: cohort total %f, want %g", row, total, cfg.CohortSize)
			}
		}
	}
}

func TestRunIsReproducibleUnderFixedSeed(t *testing.T) {
	cfg := testConfig()
	a := mustRun(t, cfg)
	b := mustRun(t, cfg)

	for _, pair := range []struct {
		name string
		x, y *ArmTable
	}{
		{"control", a.Control, b.Control},
		{"intervention", a.Intervention, b.Intervention},
	} {
		for row := 0; row < pair.x.Len(); row++ {
			if pair.x.CostDisc[row] != pair.y.CostDisc[row] || pair.x.QALYDisc[row] != pair.y.QALYDisc[row] {
				t.Fatalf("%s row %d differs between identically seeded runs", pair.name, row)
			}
			for s := 0; s < markov.NumStates; s++ {
				if pair.x.Counts[s][row] != pair.y.Counts[s][row] {
					t.Fatalf("%s row %d state %s differs between identically seeded runs", pair.name, row, markov.State(s))
				}
			}
		}
	}
}

func TestRunWorkerCountDoesNotChangeResults(t *testing.T) {
	serial := testConfig()
	serial.Workers = 1
	parallel := testConfig()
	parallel.Workers = 8

	a := mustRun(t, serial)
	b := mustRun(t, parallel)

	for row := 0; row < a.Control.Len(); row++ {
		if a.Control.CostDisc[row] != b.Control.CostDisc[row] {
			t.Fatalf("row %d differs between 1-worker and 8-worker runs", row)
		}
	}
}

func TestRunDifferentSeedsDiverge(t *testing.T) {
	a := testConfig()
	b := testConfig()
	b.Seed = 43

	ra := mustRun(t, a)
	rb := mustRun(t, b)

	same := true
	for row := 0; row < ra.Control.Len() && same; row++ {
		if ra.Control.CostDisc[row] != rb.Control.CostDisc[row] {
			same = false
		}
	}
	if same {
		t.Fatal("runs with different seeds produced identical cost columns")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero repeats", func(c *Config) { c.Repeats = 0 }},
		{"negative horizon", func(c *Config) { c.HorizonMonths = -1 }},
		{"negative cohort", func(c *Config) { c.CohortSize = -100 }},
		{"negative discount", func(c *Config) { c.DiscountCost = -1.03 }},
		{"negative inflation", func(c *Config) { c.Inflation = -1 }},
		{"reference year before pricing year", func(c *Config) { c.ReferenceYear = 2010 }},
		{"dead start state", func(c *Config) { c.StartState = markov.Dead }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, platformerrors.New(platformerrors.CodeConfigInvalid, "")) {
				t.Fatalf("expected config error code, got %v", err)
			}
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	engine, err := New(Config{Repeats: 10})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	cfg := engine.Config()
	if cfg.HorizonMonths != 60 {
		t.Fatalf("default horizon %d, want 60", cfg.HorizonMonths)
	}
	if cfg.CohortSize != 100000 {
		t.Fatalf("default cohort %g, want 100000", cfg.CohortSize)
	}
	if cfg.DiscountCost != 1.03 || cfg.DiscountQALY != 1.03 {
		t.Fatalf("default discounts %g/%g, want 1.03", cfg.DiscountCost, cfg.DiscountQALY)
	}
	if cfg.Workers <= 0 {
		t.Fatalf("default workers %d, want positive", cfg.Workers)
	}
	if cfg.StartState != markov.NYHA12 {
		// Zero value of StartState is NYHA12; the hospital default is the
		// CLI's concern, not the engine's.
		t.Fatalf("zero-value start state %v", cfg.StartState)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Repeats = 10000

	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Run(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
