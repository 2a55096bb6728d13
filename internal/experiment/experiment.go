// Package experiment runs a model repeatedly with varied seeds, in parallel,
// and gathers or persists the collected results.
package experiment

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sesimgo/sesim/internal/collect"
	"github.com/sesimgo/sesim/internal/config"
	"github.com/sesimgo/sesim/internal/model"
	"github.com/sesimgo/sesim/internal/persist"
)

// Factory builds one fully wired model from config. It runs on the worker
// goroutine of each repeat, so it must not share mutable state across calls.
type Factory func(cfg *config.Config) (*model.Model, error)

// Result is the outcome of one repeat.
type Result struct {
	RunID  uuid.UUID
	Seed   int64
	Repeat int
	Ticks  int
	Model  []collect.ModelRow
	Agents []collect.AgentRow
}

// Experiment fans a model out over seeds. Each repeat i runs with seed
// base+i, so a single-repeat experiment reproduces the configured run
// exactly.
type Experiment struct {
	cfg     *config.Config
	factory Factory
	repo    *persist.RunRepo
	log     *zap.Logger
}

func New(cfg *config.Config, factory Factory, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, factory: factory, log: log.Named("experiment")}
}

// WithRepo makes the experiment persist every run.
func (e *Experiment) WithRepo(repo *persist.RunRepo) *Experiment {
	e.repo = repo
	return e
}

// Run executes all repeats and returns their results ordered by repeat
// number. One failed repeat cancels the rest and fails the whole call.
func (e *Experiment) Run(ctx context.Context) ([]Result, error) {
	repeats := e.cfg.Experiment.Repeats
	parallel := e.cfg.Experiment.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	results := make([]Result, repeats)

	for i := 0; i < repeats; i++ {
		repeat := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.runOne(ctx, repeat)
			if err != nil {
				return fmt.Errorf("repeat %d: %w", repeat, err)
			}
			results[repeat] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Experiment) runOne(ctx context.Context, repeat int) (Result, error) {
	cfg := *e.cfg
	cfg.Model.Seed = e.cfg.Model.Seed + int64(repeat)

	m, err := e.factory(&cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		RunID:  uuid.New(),
		Seed:   cfg.Model.Seed,
		Repeat: repeat,
	}
	started := time.Now()
	if e.repo != nil {
		err := e.repo.InsertRun(ctx, persist.RunRow{
			ID:        res.RunID,
			ModelName: cfg.Model.Name,
			Seed:      res.Seed,
			RepeatNo:  repeat,
			StartedAt: started,
		})
		if err != nil {
			return Result{}, err
		}
	}

	if err := m.Run(); err != nil {
		return Result{}, err
	}
	res.Ticks = m.Clock().Tick()
	res.Model = m.Collector().ModelFrame()
	res.Agents = m.Collector().AgentFrame()
	e.log.Info("run finished",
		zap.Int("repeat", repeat),
		zap.Int64("seed", res.Seed),
		zap.Int("ticks", res.Ticks),
		zap.Duration("took", time.Since(started)))

	if e.repo != nil {
		if err := e.repo.SaveModelSamples(ctx, res.RunID, res.Model); err != nil {
			return Result{}, err
		}
		if err := e.repo.SaveAgentSamples(ctx, res.RunID, res.Agents); err != nil {
			return Result{}, err
		}
		if err := e.repo.FinishRun(ctx, res.RunID, res.Ticks); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
