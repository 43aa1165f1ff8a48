package pump

import (
	"time"

	"github.com/breutil/go-common/pkg/settings"
)

// Consumer is the interface that must be implemented by users of the Pump.
// It is responsible for processing a batch of items.
type Consumer[T any] interface {
	// Consume processes a batch of items. The slice is only valid for the
	// duration of the call; implementations that retain items must copy.
	// Returns an error if processing fails.
	Consume(batch []T) error
}

// Config holds configuration for the Pump.
type Config struct {
	// Workers is the number of draining goroutines. Defaults to 1.
	Workers int

	// BatchSize is the maximum number of items handed to the Consumer in
	// one call. Defaults to 64.
	BatchSize int

	// PopTimeout is how long a worker lingers for more items after the
	// first one, trading latency for fuller batches. Zero means hand over
	// whatever is already buffered.
	PopTimeout time.Duration
}

// ConfigFrom maps the queue section of the application settings onto a
// pump Config. The settings express PopTimeout in milliseconds.
func ConfigFrom(qc settings.Queue) Config {
	return Config{
		Workers:    qc.Workers,
		BatchSize:  qc.BatchSize,
		PopTimeout: time.Duration(qc.PopTimeout) * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	return c
}
