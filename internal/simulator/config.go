package simulator

import "time"

// Config holds configuration for the coaching session simulation
type Config struct {
	BaseURL     string        // Base URL of the service
	NumSessions int           // Number of assessment sessions to run
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	ReportFile  string        // Output file for session results
	LogFile     string        // Log file for simulation output
	Verbose     bool          // Enable verbose logging
}

// ToggleOp is one behavior checkbox change within a session script.
type ToggleOp struct {
	BehaviorID int  `json:"behavior_id"`
	Checked    bool `json:"checked"`
}

// Plan is the scripted lifecycle of one assessment session.
type Plan struct {
	Title     string            `json:"title"`
	Assessee  string            `json:"assessee"`
	Toggles   []ToggleOp        `json:"toggles"`
	Overrides map[int]int       `json:"overrides,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// Result records the outcome of one simulated session.
type Result struct {
	AssessmentID string `json:"assessment_id"`
	Assessee     string `json:"assessee"`
	TotalScore   int    `json:"total_score"`
	CheckedCount int    `json:"checked_count"`
	Overall      string `json:"overall"`
	Verified     bool   `json:"verified"`
	Error        string `json:"error,omitempty"`
}

// Stats holds simulation statistics
type Stats struct {
	SessionsPlanned   int
	SessionsCompleted int
	SessionsFailed    int
	TogglesSubmitted  int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
