package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"akara-desktop/internal/catalog"
	"akara-desktop/internal/config"
	"akara-desktop/internal/diagnostics"
	"akara-desktop/internal/domain"
	"akara-desktop/internal/export"
	"akara-desktop/internal/jobs"
	"akara-desktop/internal/playback"
	"akara-desktop/internal/session"
	"akara-desktop/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Runtime event names pushed to the frontend.
const (
	EventSession   = "session:event"
	EventAudioPlay = "audio:play"
)

var audioDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio files",
		Pattern:     "*.wav;*.mp3;*.m4a;*.flac;*.aac;*.ogg;*.webm;*.opus",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// historyFetcher isolates the backend history endpoint.
type historyFetcher interface {
	History(ctx context.Context, limit, offset int) (transcribe.HistoryPage, error)
}

// App wires configuration, the Home session, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Session     *session.Session
	Diagnostics domain.DiagnosticReport

	assets  fs.FS
	logger  *zap.Logger
	loader  *catalog.Loader
	checker *diagnostics.Checker
	history historyFetcher
	events  *jobs.EventBus

	mu         sync.Mutex
	runtimeCtx context.Context
	emit       func(ctx context.Context, name string, data ...interface{})
	openFolder func(path string) error
}

// New builds the application with persisted settings.
func New(logger *zap.Logger) (*App, error) {
	return NewWithAssets(nil, logger)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	if path, err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	} else if path != "" {
		logger.Debug("environment file loaded", zap.String("path", path))
	}

	store := config.NewJSONStore(config.SettingsPath(homeDir))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	backendURL := config.ResolveBackendURL("", settings)
	logger.Info("backend configured", zap.String("url", backendURL))
	client := transcribe.NewClient(backendURL)

	app := newApp(store, settings, client, logger)
	app.assets = assets
	return app, nil
}

// newApp assembles an App around client; the session publishes through the App.
func newApp(store config.Store, settings domain.Settings, client *transcribe.Client, logger *zap.Logger) *App {
	app := &App{
		Settings:   settings,
		Store:      store,
		logger:     logger,
		loader:     catalog.NewLoader(client, logger.Named("catalog")),
		checker:    diagnostics.NewChecker(client),
		history:    client,
		events:     jobs.NewEventBus(1000),
		emit:       wailsruntime.EventsEmit,
		openFolder: openInFileManager,
	}
	app.Session = session.New(client,
		session.WithPublisher(app),
		session.WithLogger(logger.Named("session")),
	)
	return app
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Akara",
		Width:       1100,
		Height:      760,
		AssetServer: assetOptions,
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop: true,
		},
		OnStartup: a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores the Wails runtime context, registers file drop, and kicks
// off the catalog load and backend health probe.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	wailsruntime.OnFileDrop(ctx, func(_, _ int, paths []string) {
		a.DropFiles(paths)
	})

	go a.LoadCatalog(ctx)
	go a.probeHealth(ctx)
}

// LoadCatalog fetches the language catalog and installs it on the session.
func (a *App) LoadCatalog(ctx context.Context) {
	loaded, usedFallback := a.loader.Load(ctx)
	a.Session.ReplaceCatalog(loaded)
	if usedFallback {
		a.logger.Info("using built-in language table")
	}
}

// probeHealth runs diagnostics once; results go to the log only.
func (a *App) probeHealth(ctx context.Context) {
	a.mu.Lock()
	settings := a.Settings
	a.mu.Unlock()

	report := a.checker.Run(ctx, settings)
	diagnostics.Log(a.logger.Named("health"), report)

	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
}

// GetState returns the current Home view state.
func (a *App) GetState() session.State {
	return a.Session.Snapshot()
}

// LanguageChoices is the sorted catalog rendered by both selects.
type LanguageChoices struct {
	Source []domain.LanguageOption `json:"source"`
	Target []domain.LanguageOption `json:"target"`
}

// GetLanguageOptions returns both catalog sides sorted for display.
func (a *App) GetLanguageOptions() LanguageChoices {
	source, target := a.Session.LanguageOptions()
	return LanguageChoices{Source: source, Target: target}
}

// SetSourceLanguage changes the selected source language.
func (a *App) SetSourceLanguage(code string) (session.State, error) {
	if err := a.Session.SetSourceLanguage(code); err != nil {
		return a.Session.Snapshot(), err
	}
	return a.Session.Snapshot(), nil
}

// SetTargetLanguage changes the selected target language.
func (a *App) SetTargetLanguage(code string) (session.State, error) {
	if err := a.Session.SetTargetLanguage(code); err != nil {
		return a.Session.Snapshot(), err
	}
	return a.Session.Snapshot(), nil
}

// SetModel changes the selected model.
func (a *App) SetModel(model string) (session.State, error) {
	if err := a.Session.SetModel(model); err != nil {
		return a.Session.Snapshot(), err
	}
	return a.Session.Snapshot(), nil
}

// PickAudioFile opens a native file dialog and selects the chosen file.
func (a *App) PickAudioFile() (session.State, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return session.State{}, err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio file",
		Filters: audioDialogFilter,
	})
	if err != nil {
		return session.State{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return a.Session.Snapshot(), nil
	}
	a.Session.SelectFiles(describeFiles(a.logger, []string{path}))
	return a.Session.Snapshot(), nil
}

// DropFiles selects the first dropped path.
func (a *App) DropFiles(paths []string) {
	a.Session.DropFiles(describeFiles(a.logger, paths))
}

// SetDragActive records drag-hover state for the drop zone highlight.
func (a *App) SetDragActive(active bool) {
	a.Session.SetDragActive(active)
}

// Submit starts a transcription and returns immediately in the Processing
// state; the outcome arrives as session events.
func (a *App) Submit() (session.State, error) {
	sub, err := a.Session.Begin()
	if err != nil {
		if errors.Is(err, session.ErrNoFileSelected) {
			return a.Session.Snapshot(), nil
		}
		return a.Session.Snapshot(), err
	}

	go a.runSubmission(sub)
	return a.Session.Snapshot(), nil
}

func (a *App) runSubmission(sub *session.Submission) {
	if _, err := sub.Run(context.Background()); err != nil {
		a.logger.Debug("submission settled with error", zap.String("id", sub.ID), zap.Error(err))
	}
}

// PlayTranslatedAudio hands the decoded translated audio to the frontend player.
func (a *App) PlayTranslatedAudio() (session.State, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return session.State{}, err
	}

	handle := &playback.FuncHandle{Emit: func(ctx context.Context, src string) error {
		a.emit(ctx, EventAudioPlay, src)
		return nil
	}}
	if _, err := a.Session.PlayTranslatedAudio(ctx, handle); err != nil && !errors.Is(err, playback.ErrDecode) {
		return a.Session.Snapshot(), err
	}
	return a.Session.Snapshot(), nil
}

// SaveTranslatedAudio asks for a destination and writes the translated audio there.
func (a *App) SaveTranslatedAudio() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	res, err := playback.Decode(a.Session.Snapshot().Result.TranslatedAudio)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	outputDir := a.Settings.OutputDir
	a.mu.Unlock()

	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:            "Save translated audio",
		DefaultDirectory: outputDir,
		DefaultFilename:  DefaultAudioFilename(res.MIMEType, time.Now()),
	})
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	return a.writeTranslatedAudio(ctx, path)
}

// writeTranslatedAudio decodes the current result's audio into path.
func (a *App) writeTranslatedAudio(ctx context.Context, path string) (string, error) {
	handle := &playback.FileHandle{Path: path}
	if _, err := playback.Play(ctx, handle, a.Session.Snapshot().Result.TranslatedAudio); err != nil {
		return "", fmt.Errorf("save translated audio: %w", err)
	}
	a.logger.Info("translated audio saved", zap.String("path", path))
	return path, nil
}

// DefaultAudioFilename suggests a file name whose extension matches mimeType.
func DefaultAudioFilename(mimeType string, at time.Time) string {
	return "translation-" + at.Format("20060102-150405") + playback.Extension(mimeType)
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return a.openFolder(openPath)
}

// GetHistory returns one page of past transcriptions.
func (a *App) GetHistory(limit, offset int) (transcribe.HistoryPage, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.history.History(ctx, limit, offset)
}

// ExportHistory saves one page of history to an Excel file chosen by the user.
func (a *App) ExportHistory(limit int) (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	outputDir := a.Settings.OutputDir
	a.mu.Unlock()

	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:            "Export history",
		DefaultDirectory: outputDir,
		DefaultFilename:  "akara-history.xlsx",
	})
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	return a.exportHistoryTo(path, limit)
}

func (a *App) exportHistoryTo(path string, limit int) (string, error) {
	page, err := a.GetHistory(limit, 0)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}
	if err := export.ToExcel(page.History, path); err != nil {
		return "", err
	}
	a.logger.Info("history exported", zap.String("path", path), zap.Int("rows", len(page.History)))
	return path, nil
}

// ToggleMenu flips the menu overlay.
func (a *App) ToggleMenu() bool {
	return a.Session.ToggleMenu()
}

// CloseMenu closes the menu overlay.
func (a *App) CloseMenu() {
	a.Session.SetMenuOpen(false)
}

// GetDiagnostics returns the latest cached health report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings. A new backend URL takes
// effect on next launch.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.mu.Unlock()

	return normalized, nil
}

// SessionEvents returns all events with sequence greater than sinceSeq.
func (a *App) SessionEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// Publish stores event history and emits runtime push notifications.
func (a *App) Publish(event jobs.Event) jobs.Event {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil && a.emit != nil {
		a.emit(ctx, EventSession, published)
	}
	return published
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// describeFiles stats each path; unreadable entries keep a zero size.
func describeFiles(logger *zap.Logger, paths []string) []domain.SelectedFile {
	files := make([]domain.SelectedFile, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		file := domain.SelectedFile{Path: path, Name: filepath.Base(path)}
		if info, err := os.Stat(path); err == nil {
			file.Size = info.Size()
		} else {
			logger.Debug("stat selected file", zap.String("path", path), zap.Error(err))
		}
		files = append(files, file)
	}
	return files
}

// normalizeSettings trims user inputs and strips a trailing slash from the URL.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.BackendURL = strings.TrimRight(strings.TrimSpace(settings.BackendURL), "/")
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	if settings.BackendURL == "" {
		settings.BackendURL = config.DefaultBackendURL
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
