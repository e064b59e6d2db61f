package domain

import "time"

// DiagnosticStatus indicates whether a single startup check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
)

// DiagnosticItem is one startup check result with optional hint.
type DiagnosticItem struct {
	ID      string           `json:"id" yaml:"id"`
	Name    string           `json:"name" yaml:"name"`
	Status  DiagnosticStatus `json:"status" yaml:"status"`
	Message string           `json:"message" yaml:"message"`
	Hint    string           `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// DiagnosticReport aggregates startup checks for the log sink and CLI.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt" yaml:"generatedAt"`
	HasFailures bool             `json:"hasFailures" yaml:"hasFailures"`
	Items       []DiagnosticItem `json:"items" yaml:"items"`
}
