// Package hfpsa parses PSA command flags and drives a full simulation run.
package hfpsa

import (
	"context"
	"flag"
	"log"

	"github.com/cardecon/hfpsa/internal/markov"
	entrypoint "github.com/cardecon/hfpsa/internal/platform/cmd"
	"github.com/cardecon/hfpsa/internal/platform/random"
	"github.com/cardecon/hfpsa/internal/psa"
	"github.com/cardecon/hfpsa/internal/storage/sqlite"
)

// Config holds hfpsa command configuration.
type Config struct {
	Repeats       int     `env:"HFPSA_REPEATS" envDefault:"1000"`
	HorizonMonths int     `env:"HFPSA_HORIZON_MONTHS" envDefault:"60"`
	CohortSize    float64 `env:"HFPSA_COHORT_SIZE" envDefault:"100000"`
	DiscountCost  float64 `env:"HFPSA_DISCOUNT_COST" envDefault:"1.03"`
	DiscountQALY  float64 `env:"HFPSA_DISCOUNT_QALY" envDefault:"1.03"`
	Inflation     float64 `env:"HFPSA_INFLATION" envDefault:"1.019"`
	ReferenceYear int     `env:"HFPSA_REFERENCE_YEAR" envDefault:"2019"`
	WTP           float64 `env:"HFPSA_WTP" envDefault:"20000"`
	Seed          uint64  `env:"HFPSA_SEED"`
	Workers       int     `env:"HFPSA_WORKERS"`
	OutPath       string  `env:"HFPSA_OUT"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Repeats, "repeats", cfg.Repeats, "Number of resampled repeats")
	fs.IntVar(&cfg.HorizonMonths, "horizon", cfg.HorizonMonths, "Simulation horizon in months")
	fs.Float64Var(&cfg.WTP, "wtp", cfg.WTP, "Willingness to pay per QALY")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 draws one from crypto/rand)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel repeat workers (0 uses GOMAXPROCS)")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "SQLite file to export results to (optional)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the PSA and reports summary statistics. When no seed was
// configured one is drawn from crypto/rand and logged, so the run stays
// reproducible after the fact.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePSA, func(ctx context.Context) error {
		seed := cfg.Seed
		if seed == 0 {
			drawn, err := random.NewSeed()
			if err != nil {
				return err
			}
			seed = drawn
		}
		log.Printf("running %d repeats over %d months (seed %d)", cfg.Repeats, cfg.HorizonMonths, seed)

		engine, err := psa.New(psa.Config{
			Repeats:       cfg.Repeats,
			HorizonMonths: cfg.HorizonMonths,
			CohortSize:    cfg.CohortSize,
			DiscountCost:  cfg.DiscountCost,
			DiscountQALY:  cfg.DiscountQALY,
			Inflation:     cfg.Inflation,
			ReferenceYear: cfg.ReferenceYear,
			StartState:    markov.Hospital,
			Seed:          seed,
			Workers:       cfg.Workers,
		})
		if err != nil {
			return err
		}

		res, err := engine.Run(ctx)
		if err != nil {
			return err
		}

		deltas, err := psa.ComputeDeltas(res, cfg.WTP)
		if err != nil {
			return err
		}
		summary, err := psa.Summarise(deltas)
		if err != nil {
			return err
		}

		log.Printf("dCost mean %.2f (sd %.2f), dQALY mean %.4f (sd %.4f)",
			summary.MeanDCost, summary.StdDCost, summary.MeanDQALY, summary.StdDQALY)
		log.Printf("NMB mean %.2f at WTP %.0f, cost-effective in %.1f%% of repeats",
			summary.MeanNMB, cfg.WTP, 100*summary.ProbCostEffective)

		if cfg.OutPath == "" {
			return nil
		}

		store, err := sqlite.Open(cfg.OutPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close result store: %v", err)
			}
		}()
		if err := store.SaveResults(ctx, res); err != nil {
			return err
		}
		if err := store.SaveDeltas(ctx, deltas); err != nil {
			return err
		}
		log.Printf("exported %d monthly rows per arm and %d deltas to %s",
			res.Control.Len(), len(deltas), cfg.OutPath)
		return nil
	})
}
