package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sesimgo/sesim/internal/config"
	"github.com/sesimgo/sesim/internal/experiment"
	"github.com/sesimgo/sesim/internal/model"
	"github.com/sesimgo/sesim/internal/persist"
	"github.com/sesimgo/sesim/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/model.toml"
	if p := os.Getenv("SESIM_CONFIG"); p != "" {
		cfgPath = p
	}
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = demoConfig()
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	exp := experiment.New(cfg, demoFactory, log)
	if cfg.Experiment.Persist {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		exp.WithRepo(persist.NewRunRepo(db))
	}

	results, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	for _, res := range results {
		fields := []zap.Field{
			zap.Int("repeat", res.Repeat),
			zap.Int64("seed", res.Seed),
			zap.Int("ticks", res.Ticks),
		}
		if len(res.Model) > 0 {
			fields = append(fields, zap.Any("final", res.Model[len(res.Model)-1].Values))
		}
		log.Info("run summary", fields...)
	}
	return nil
}

func demoConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Model.Name = "grazers"
	cfg.Model.Steps = 50
	cfg.Model.Breeds = []string{"Grazer"}
	cfg.Layers = []config.LayerConfig{{Name: "pasture", Width: 20, Height: 20}}
	return cfg
}

// demoFactory wires the bundled grazing demo: agents roam a pasture, eat the
// grass under them, and starve when their cell and its surroundings are bare.
func demoFactory(cfg *config.Config) (*model.Model, error) {
	m, err := model.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	if err := m.AddModule(&grazing{initial: 40}); err != nil {
		return nil, err
	}
	err = m.Collector().AddModelReporter("population", func() any {
		return m.World().Agents().Len()
	})
	if err != nil {
		return nil, err
	}
	err = m.Collector().AddAgentReporter("energy", func(a *world.Actor) any {
		return a.AttrOr("energy", 0)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// grazing is the bundled demo module.
type grazing struct {
	initial int
}

func (g *grazing) Name() string { return "grazing" }

func (g *grazing) Initialize(m *model.Model) error {
	layer, ok := m.World().Layer("pasture")
	if !ok {
		return fmt.Errorf("layer pasture not configured")
	}
	for _, cell := range layer.Cells() {
		cell.SetAttr("grass", 5.0)
	}

	agents, err := m.World().NewActors("Grazer", g.initial)
	if err != nil {
		return err
	}
	for _, a := range agents {
		a.SetAttr("energy", 10.0)
		if err := a.MoveTo(layer.RandomCell()); err != nil {
			return err
		}
		err := a.Rule("starve",
			world.Custom(func(x *world.Actor) bool {
				return x.AttrOr("energy", 0.0).(float64) <= 0
			}),
			func(x *world.Actor) { x.Die() },
			world.TriggerUpdate, false, false)
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *grazing) Step(m *model.Model) {
	agents, err := m.World().Agents().Get()
	if err != nil {
		return
	}
	for _, a := range agents {
		if !a.Alive() {
			continue
		}
		cell := a.At()
		if v, ok := cell.Attr("grass"); ok && v.(float64) >= 1 {
			cell.SetAttr("grass", v.(float64)-1)
			a.SetAttr("energy", a.AttrOr("energy", 0.0).(float64)+1)
		} else {
			a.SetAttr("energy", a.AttrOr("energy", 0.0).(float64)-1)
		}
		if !a.Alive() {
			continue
		}
		_ = a.MoveRandom(true, 1)
	}

	// grass regrows slowly
	layer, _ := m.World().Layer("pasture")
	for _, cell := range layer.Cells() {
		if v, ok := cell.Attr("grass"); ok && v.(float64) < 5 {
			cell.SetAttr("grass", v.(float64)+0.25)
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
