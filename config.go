// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk tuning surface for a Platform (SPEC_FULL.md §4.O):
// everything about Platform that is reasonable to vary per-deployment
// without recompiling.
type Config struct {
	ExecutorWorkers     int64  `yaml:"executorWorkers"`
	BlockingExecutorMax int64  `yaml:"blockingExecutorMax"` // 0 means unbounded
	YieldOpCount        int    `yaml:"yieldOpCount"`
	LogLevel            string `yaml:"logLevel"`
}

// DefaultConfig mirrors NewDefaultPlatform's choices.
func DefaultConfig() Config {
	return Config{
		ExecutorWorkers:     16,
		BlockingExecutorMax: 0,
		YieldOpCount:        2048,
		LogLevel:            "info",
	}
}

// LoadConfig reads and parses a YAML config file, filling in
// DefaultConfig's values for anything the file omits.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "zio: reading config %q", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "zio: parsing config %q", path)
	}
	return cfg, nil
}

// NewPlatformFromConfig builds a Platform from cfg, wiring LogLevel into
// the package logger and the numeric fields into the Executor pool sizes
// and yield threshold.
func NewPlatformFromConfig(cfg Config) Platform {
	if lvl, err := parseLogLevel(cfg.LogLevel); err == nil {
		Log = Log.Level(lvl)
	}
	blocking := NewUnboundedExecutor("blocking")
	if cfg.BlockingExecutorMax > 0 {
		blocking = NewExecutor("blocking", cfg.BlockingExecutorMax)
	}
	workers := cfg.ExecutorWorkers
	if workers <= 0 {
		workers = int64(runtime.GOMAXPROCS(0))
	}
	return Platform{
		Executor:         NewExecutor("default", workers),
		BlockingExecutor: blocking,
		YieldOpCount:     cfg.YieldOpCount,
		Fatal:            defaultFatal,
		ReportFailure:    defaultReportFailure,
		ReportFatal:      defaultReportFatal,
	}
}
