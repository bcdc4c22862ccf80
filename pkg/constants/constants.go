// Package constants provides shared constants used throughout the driftmap codebase.
package constants

import "time"

// Pagination defaults for resolution requests
const (
	// DefaultPage is the page served when none (or an invalid one) is requested
	DefaultPage = 1

	// DefaultPerPage is the page size used when none is requested
	DefaultPerPage = 20

	// MinPerPage is the lower clamp for requested page sizes
	MinPerPage = 1

	// MaxPerPage is the upper clamp for requested page sizes
	MaxPerPage = 1000
)

// Timeout constants
const (
	// DefaultTimeout is the standard timeout for provider queries
	DefaultTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached API responses
	CacheTTL = 30 * time.Second

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Engine constants
const (
	// DefaultWorkers is the number of resolve workers; 1 keeps the pass serial
	DefaultWorkers = 1

	// MaxWorkers caps the resolve worker pool
	MaxWorkers = 64
)
