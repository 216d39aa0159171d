// Package config holds the tunables of the concurrency runtime. Settings
// can be built programmatically or loaded from YAML; either way they are
// clamped to sane minimums so a zero or garbage value can never produce a
// pool with no workers or an unbounded queue.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultQueueCapacity bounds each worker's spark queue when no capacity is
// configured.
const DefaultQueueCapacity = 256

// Config describes a worker pool shared by spark evaluation and future
// execution.
type Config struct {
	// Workers is the number of worker goroutines. Default: GOMAXPROCS.
	Workers int `yaml:"workers"`
	// QueueCapacity bounds each worker's pending queue. A spark enqueued
	// against a full queue is rejected as Overflowed. Default:
	// DefaultQueueCapacity.
	QueueCapacity int `yaml:"queue_capacity"`
}

// New builds a Config, clamping non-positive values to the defaults.
func New(workers, queueCapacity int) Config {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	return Config{Workers: workers, QueueCapacity: queueCapacity}
}

// Default returns the runtime defaults.
func Default() Config {
	return New(0, 0)
}

// FromYAML parses a Config from YAML, applying the same clamping as New.
func FromYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse yaml: %w", err)
	}
	return New(cfg.Workers, cfg.QueueCapacity), nil
}

// FromFile reads and parses a YAML config file.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return FromYAML(data)
}
