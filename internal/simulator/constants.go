package simulator

import "net/http"

// HTTP status codes the service responds with.
const (
	StatusOK      = http.StatusOK
	StatusCreated = http.StatusCreated
)

// Defaults for the simulation run.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultNumSessions = 50
	DefaultWorkers     = 4
	DefaultTimeoutSecs = 30

	// PercentageMultiplier converts a ratio into a percentage.
	PercentageMultiplier = 100.0
)
