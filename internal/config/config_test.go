package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
[model]
name = "farmers"
steps = 50
seed = 42
max_agents = 200
breeds = ["Farmer", "Herder"]

[time]
start = "1990-01-01"
end = "2000-01-01"
freq = "Y"

[[layers]]
name = "plain"
width = 20
height = 10
data = "elevation.yaml"

[logging]
level = "debug"
format = "json"

[experiment]
repeats = 8
parallel = 4
persist = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "farmers", cfg.Model.Name)
	assert.Equal(t, 50, cfg.Model.Steps)
	assert.Equal(t, int64(42), cfg.Model.Seed)
	assert.Equal(t, []string{"Farmer", "Herder"}, cfg.Model.Breeds)
	assert.Equal(t, "Y", cfg.Time.Freq)
	require.Len(t, cfg.Layers, 1)
	assert.Equal(t, 20, cfg.Layers[0].Width)
	assert.Equal(t, "elevation.yaml", cfg.Layers[0].Data)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Experiment.Repeats)
	assert.True(t, cfg.Experiment.Persist)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[model]
name = "minimal"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Model.Steps)
	assert.Equal(t, int64(1), cfg.Model.Seed)
	assert.Equal(t, "tick", cfg.Time.Freq)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1, cfg.Experiment.Repeats)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"empty name":      "[model]\nname = \"\"",
		"negative steps":  "[model]\nname = \"x\"\nsteps = -1",
		"zero repeats":    "[model]\nname = \"x\"\n[experiment]\nrepeats = 0",
		"bad freq":        "[model]\nname = \"x\"\n[time]\nfreq = \"fortnight\"",
		"unbounded run":   "[model]\nname = \"x\"\nsteps = 0",
		"bad layer":       "[model]\nname = \"x\"\n[[layers]]\nname = \"a\"\nwidth = 0\nheight = 3",
		"duplicate layer": "[model]\nname = \"x\"\n[[layers]]\nname = \"a\"\nwidth = 2\nheight = 2\n[[layers]]\nname = \"a\"\nwidth = 2\nheight = 2",
		"not toml":        "model = [unclosed",
	}
	for label, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, label)
	}
}

func TestLoadZeroStepsWithCalendar(t *testing.T) {
	// the calendar end date bounds the run, so steps = 0 is fine here
	path := writeConfig(t, `
[model]
name = "calendar"
steps = 0

[time]
freq = "year"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Model.Steps)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
