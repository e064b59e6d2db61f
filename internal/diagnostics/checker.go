package diagnostics

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"akara-desktop/internal/domain"
	"akara-desktop/internal/transcribe"
)

// HealthClient is the subset of the backend client the checker probes.
type HealthClient interface {
	Health(ctx context.Context) (transcribe.Health, error)
	ServiceHealth(ctx context.Context) (transcribe.ServiceHealth, error)
}

// Checker probes the backend and local output directory.
type Checker struct {
	client     HealthClient
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	now        func() time.Time
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(client HealthClient) *Checker {
	return &Checker{
		client:     client,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		now:        time.Now,
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkBackend(ctx),
		c.checkTranscriptionService(ctx),
		c.checkOutputDir(settings.OutputDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkBackend calls the liveness probe.
func (c *Checker) checkBackend(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "backend_health",
		Name: "Backend",
	}

	health, err := c.client.Health(ctx)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Backend unreachable: %v", err)
		item.Hint = "Check the backend URL in settings or the AKARA_BACKEND_URL environment variable."
		return item
	}

	if !strings.EqualFold(health.Status, "healthy") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Backend reports %s (database: %s)", health.Status, health.Database)
		item.Hint = "The backend is running but one of its dependencies is down."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%s %s is healthy", fallback(health.Service, "Backend"), health.Version)
	return item
}

// checkTranscriptionService reports per-service status of the transcription router.
func (c *Checker) checkTranscriptionService(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "transcription_service",
		Name: "Transcription service",
	}

	health, err := c.client.ServiceHealth(ctx)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Transcription health unavailable: %v", err)
		item.Hint = "Submissions will likely fail until the service responds."
		return item
	}

	if !strings.EqualFold(health.Status, "healthy") {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Transcription service is %s: %s", health.Status, unhealthyServices(health.Services))
		item.Hint = "An unhealthy agent usually means the backend API keys are not configured."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "All transcription services healthy"
	return item
}

// checkOutputDir validates the translated-audio export directory.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where translated audio can be saved."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for saved audio."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// Log writes every report item to logger; failures at warn level.
func Log(logger *zap.Logger, report domain.DiagnosticReport) {
	for _, item := range report.Items {
		fields := []zap.Field{
			zap.String("check", item.ID),
			zap.String("message", item.Message),
		}
		if item.Status == domain.DiagnosticStatusFail {
			logger.Warn("diagnostic failed", append(fields, zap.String("hint", item.Hint))...)
			continue
		}
		logger.Info("diagnostic passed", fields...)
	}
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	client HealthClient,
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	now func() time.Time,
) *Checker {
	return &Checker{
		client:     client,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		now:        now,
	}
}

func unhealthyServices(services map[string]string) string {
	var names []string
	for name, status := range services {
		if !strings.EqualFold(status, "healthy") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "no service details"
	}
	sort.Strings(names)
	return "unhealthy: " + strings.Join(names, ", ")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
