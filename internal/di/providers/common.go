package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// cacheGCInterval is how often the badger value log is compacted.
	cacheGCInterval = 10 * time.Minute
)
