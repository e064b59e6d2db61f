package bootstrap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"akara-desktop/internal/domain"
	"akara-desktop/internal/jobs"
	"akara-desktop/internal/session"
	"akara-desktop/internal/transcribe"
)

var minimalWAV = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x40\x1f\x00\x00\x80\x3e\x00\x00\x02\x00\x10\x00data\x00\x00\x00\x00")

// fakeStore keeps settings in memory for App tests.
type fakeStore struct {
	mu       sync.Mutex
	settings domain.Settings
	saved    int
}

// Load returns preconfigured settings.
func (s *fakeStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

// Save records the settings.
func (s *fakeStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.saved++
	return nil
}

// emitRecorder captures runtime events by name.
type emitRecorder struct {
	mu     sync.Mutex
	events map[string][]interface{}
}

func (r *emitRecorder) emit(_ context.Context, name string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]interface{}{}
	}
	r.events[name] = append(r.events[name], data...)
}

func (r *emitRecorder) get(name string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.events[name]...)
}

// newTestApp builds an App against handler with no Wails runtime attached.
func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := domain.Settings{BackendURL: srv.URL, OutputDir: t.TempDir()}
	return newApp(&fakeStore{settings: settings}, settings, transcribe.NewClient(srv.URL), zap.NewNop())
}

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speech.wav")
	if err := os.WriteFile(path, minimalWAV, 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func transcriptionHandler(audio string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case transcribe.PathTranscribe:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"transcript":       "namaste",
				"translation":      "hello",
				"translated_audio": audio,
			})
		case transcribe.PathLanguages:
			_, _ = io.WriteString(w, `{"source_languages":{"hi":"Hindi","ta":"Tamil"},"target_languages":{"en":"English"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

// TestSubmitRunsAsynchronouslyAndPublishesResult checks event flow.
func TestSubmitRunsAsynchronouslyAndPublishesResult(t *testing.T) {
	app := newTestApp(t, transcriptionHandler(base64.StdEncoding.EncodeToString(minimalWAV)))
	app.DropFiles([]string{writeAudioFile(t)})

	state, err := app.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.SelectedFile == nil || state.SelectedFile.Name != "speech.wav" {
		t.Fatalf("selected file = %+v", state.SelectedFile)
	}
	if state.SelectedFile.Size != int64(len(minimalWAV)) {
		t.Fatalf("size = %d", state.SelectedFile.Size)
	}

	waitForEvent(t, app, jobs.EventTypeResult)
	got := app.GetState()
	if got.Processing != domain.ProcessingIdle {
		t.Fatalf("processing = %s, want idle", got.Processing)
	}
	if got.Result.Transcript != "namaste" || got.Result.Translation != "hello" {
		t.Fatalf("result = %+v", got.Result)
	}
	if !got.CanPlay() {
		t.Fatal("expected play to be enabled")
	}
}

// TestSubmitWithoutFileSetsBanner checks the no-file path resolves without error.
func TestSubmitWithoutFileSetsBanner(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	state, err := app.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.ErrorMessage != session.MessageNoFile {
		t.Fatalf("banner = %q", state.ErrorMessage)
	}
	if state.Processing != domain.ProcessingIdle {
		t.Fatalf("processing = %s", state.Processing)
	}
}

// TestSubmitEnforcesSingleInFlight checks the single-submission guard.
func TestSubmitEnforcesSingleInFlight(t *testing.T) {
	release := make(chan struct{})
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"transcript":"t","translation":"tr"}`)
	}))
	selectFile(app, writeAudioFile(t))

	if _, err := app.Submit(); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := app.Submit(); !errors.Is(err, session.ErrSubmissionInFlight) {
		t.Fatalf("second submit error = %v, want %v", err, session.ErrSubmissionInFlight)
	}

	close(release)
	waitForEvent(t, app, jobs.EventTypeResult)
}

// TestLoadCatalogFallsBackWhenBackendFails checks the fallback table is installed.
func TestLoadCatalogFallsBackWhenBackendFails(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	app.LoadCatalog(context.Background())

	choices := app.GetLanguageOptions()
	if len(choices.Source) != 12 || len(choices.Target) != 12 {
		t.Fatalf("fallback sizes = %d/%d, want 12/12", len(choices.Source), len(choices.Target))
	}
	if _, err := app.SetSourceLanguage("ta"); err != nil {
		t.Fatalf("set source: %v", err)
	}
}

// TestLoadCatalogReplacesFromBackend checks catalog selection is constrained.
func TestLoadCatalogReplacesFromBackend(t *testing.T) {
	app := newTestApp(t, transcriptionHandler(""))

	app.LoadCatalog(context.Background())

	choices := app.GetLanguageOptions()
	if len(choices.Source) != 2 || choices.Source[0].Name != "Hindi" {
		t.Fatalf("source options = %+v", choices.Source)
	}
	if _, err := app.SetTargetLanguage("fr"); !errors.Is(err, session.ErrUnknownLanguage) {
		t.Fatalf("set target error = %v", err)
	}
	state, err := app.SetSourceLanguage("ta")
	if err != nil {
		t.Fatalf("set source: %v", err)
	}
	if state.Options.SourceLanguage != "ta" {
		t.Fatalf("source = %q", state.Options.SourceLanguage)
	}
}

// TestPlayTranslatedAudioEmitsDataURL checks playback reaches the frontend.
func TestPlayTranslatedAudioEmitsDataURL(t *testing.T) {
	app := newTestApp(t, transcriptionHandler(base64.StdEncoding.EncodeToString(minimalWAV)))
	recorder := &emitRecorder{}
	app.emit = recorder.emit
	app.runtimeCtx = context.Background()

	selectFile(app, writeAudioFile(t))
	if _, err := app.Session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := app.PlayTranslatedAudio(); err != nil {
		t.Fatalf("play: %v", err)
	}

	played := recorder.get(EventAudioPlay)
	if len(played) != 1 {
		t.Fatalf("audio events = %d, want 1", len(played))
	}
	src, _ := played[0].(string)
	want := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(minimalWAV)
	if src != want {
		t.Fatalf("src = %q", src)
	}
	if len(recorder.get(EventSession)) == 0 {
		t.Fatal("expected session events to be emitted")
	}
}

// TestPlayTranslatedAudioBadPayloadSetsBanner checks decode failures are visible.
func TestPlayTranslatedAudioBadPayloadSetsBanner(t *testing.T) {
	app := newTestApp(t, transcriptionHandler("%%%not-base64"))
	recorder := &emitRecorder{}
	app.emit = recorder.emit
	app.runtimeCtx = context.Background()

	selectFile(app, writeAudioFile(t))
	if _, err := app.Session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	state, err := app.PlayTranslatedAudio()
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if state.ErrorMessage != session.MessageBadAudio {
		t.Fatalf("banner = %q", state.ErrorMessage)
	}
	if len(recorder.get(EventAudioPlay)) != 0 {
		t.Fatal("nothing should be played")
	}
}

// TestWriteTranslatedAudio checks the decoded bytes land on disk.
func TestWriteTranslatedAudio(t *testing.T) {
	app := newTestApp(t, transcriptionHandler(base64.StdEncoding.EncodeToString(minimalWAV)))
	selectFile(app, writeAudioFile(t))
	if _, err := app.Session.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	target := filepath.Join(t.TempDir(), "nested", "out.wav")
	path, err := app.writeTranslatedAudio(context.Background(), target)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(minimalWAV) {
		t.Fatal("written audio differs")
	}
}

// TestDefaultAudioFilename checks the suggested extension follows the media type.
func TestDefaultAudioFilename(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := map[string]string{
		"audio/wav":     "translation-20250304-050607.wav",
		"audio/mpeg":    "translation-20250304-050607.mp3",
		"audio/unknown": "translation-20250304-050607.wav",
	}
	for mimeType, want := range tests {
		if got := DefaultAudioFilename(mimeType, at); got != want {
			t.Errorf("DefaultAudioFilename(%q) = %q, want %q", mimeType, got, want)
		}
	}
}

// TestOpenOutputFolderUsesParentOfFile checks file paths open their directory.
func TestOpenOutputFolderUsesParentOfFile(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	var opened string
	app.openFolder = func(path string) error {
		opened = path
		return nil
	}

	filePath := writeAudioFile(t)
	if err := app.OpenOutputFolder(filePath); err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != filepath.Dir(filePath) {
		t.Fatalf("opened = %q", opened)
	}

	if err := app.OpenOutputFolder(""); err != nil {
		t.Fatalf("open default: %v", err)
	}
	if opened != app.Settings.OutputDir {
		t.Fatalf("opened = %q, want %q", opened, app.Settings.OutputDir)
	}
}

// TestGetHistoryAppliesDefaults checks paging defaults.
func TestGetHistoryAppliesDefaults(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "10" || r.URL.Query().Get("offset") != "0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"total":1,"limit":10,"offset":0,"history":[{"id":"a","filename":"x.wav"}]}`)
	}))

	page, err := app.GetHistory(0, -3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.Total != 1 || len(page.History) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

// TestExportHistoryWritesWorkbook checks history export lands on disk.
func TestExportHistoryWritesWorkbook(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total":1,"limit":25,"offset":0,"history":[{"id":"a","filename":"x.wav"}]}`)
	}))

	target := filepath.Join(t.TempDir(), "history.xlsx")
	path, err := app.exportHistoryTo(target, 25)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat export: %v", err)
	}
}

// TestSaveSettingsNormalizes checks trimming and defaults before persistence.
func TestSaveSettingsNormalizes(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	saved, err := app.SaveSettings(domain.Settings{BackendURL: "  https://akara.example/ ", OutputDir: " /tmp/out "})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.BackendURL != "https://akara.example" || saved.OutputDir != "/tmp/out" {
		t.Fatalf("saved = %+v", saved)
	}

	loaded, err := app.GetSettings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != saved {
		t.Fatalf("loaded = %+v, want %+v", loaded, saved)
	}

	empty, err := app.SaveSettings(domain.Settings{})
	if err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if empty.BackendURL == "" {
		t.Fatal("expected default backend url")
	}
}

// TestMenuToggle checks the overlay flag round-trips through the App.
func TestMenuToggle(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	if !app.ToggleMenu() {
		t.Fatal("expected menu open")
	}
	app.CloseMenu()
	if app.GetState().MenuOpen {
		t.Fatal("expected menu closed")
	}
}

// selectFile selects path as if chosen from the dialog.
func selectFile(app *App, path string) {
	app.Session.SelectFiles(describeFiles(app.logger, []string{path}))
}

// waitForEvent polls the event log until an event of eventType appears.
func waitForEvent(t *testing.T, app *App, eventType jobs.EventType) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, event := range app.SessionEvents(0) {
			if event.Type == eventType {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s event", eventType)
}
