// Package session holds the Home view's state as one explicit struct and
// exposes the transitions that may change it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"akara-desktop/internal/catalog"
	"akara-desktop/internal/domain"
	"akara-desktop/internal/jobs"
	"akara-desktop/internal/playback"
	"akara-desktop/internal/transcribe"
)

var (
	// ErrNoFileSelected blocks a submission before any network call.
	ErrNoFileSelected = errors.New("no audio file selected")
	// ErrSubmissionInFlight rejects a second submission while one is outstanding.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrUnknownLanguage rejects a language code missing from the catalog.
	ErrUnknownLanguage = errors.New("language not in catalog")
)

// State is a snapshot of everything the Home view renders.
type State struct {
	SelectedFile   *domain.SelectedFile   `json:"selectedFile,omitempty"`
	Options        domain.Options         `json:"options"`
	Catalog        domain.LanguageCatalog `json:"catalog"`
	CatalogLoaded  bool                   `json:"catalogLoaded"`
	Result         domain.RequestResult   `json:"result"`
	Processing     domain.ProcessingState `json:"processing"`
	ProcessingTime float64                `json:"processingTime"`
	ErrorMessage   string                 `json:"errorMessage"`
	DragActive     bool                   `json:"dragActive"`
	MenuOpen       bool                   `json:"menuOpen"`
}

// CanSubmit reports whether the submit control should be enabled.
func (s State) CanSubmit() bool {
	return s.Processing != domain.ProcessingInProgress
}

// CanPlay reports whether the play control should be enabled.
func (s State) CanPlay() bool {
	return s.Result.HasAudio()
}

// Transcriber performs the backend upload.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Result, error)
}

// Publisher receives session events; the desktop app forwards them to the UI.
type Publisher interface {
	Publish(event jobs.Event) jobs.Event
}

// Session owns the Home state. All mutation goes through its methods.
type Session struct {
	client    Transcriber
	jobs      *jobs.Manager
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu    sync.RWMutex
	state State
}

// Option customizes a Session.
type Option func(*Session)

// WithPublisher forwards state events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an idle session with default options and an empty catalog.
func New(client Transcriber, opts ...Option) *Session {
	s := &Session{
		client: client,
		jobs:   jobs.NewManager(),
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
		state: State{
			Options:    domain.DefaultOptions(),
			Processing: domain.ProcessingIdle,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	if s.state.SelectedFile != nil {
		file := *s.state.SelectedFile
		out.SelectedFile = &file
	}
	out.Catalog = s.state.Catalog.Clone()
	return out
}

// ReplaceCatalog installs a freshly loaded catalog wholesale. A selected
// language the new catalog lacks falls back to the default, or to the first
// rendered option when the default is missing too.
func (s *Session) ReplaceCatalog(c domain.LanguageCatalog) {
	s.mu.Lock()
	s.state.Catalog = c.Clone()
	s.state.CatalogLoaded = true
	defaults := domain.DefaultOptions()
	s.state.Options.SourceLanguage = reconcile(s.state.Options.SourceLanguage, defaults.SourceLanguage, c.Source)
	s.state.Options.TargetLanguage = reconcile(s.state.Options.TargetLanguage, defaults.TargetLanguage, c.Target)
	s.mu.Unlock()

	s.publish(jobs.Event{
		Type:    jobs.EventTypeCatalog,
		Message: fmt.Sprintf("%d source / %d target languages", len(c.Source), len(c.Target)),
	})
}

func reconcile(current, fallback string, names map[string]string) string {
	if len(names) == 0 {
		return current
	}
	if _, ok := names[current]; ok {
		return current
	}
	if _, ok := names[fallback]; ok {
		return fallback
	}
	return catalog.Options(names)[0].Code
}

// LanguageOptions renders both catalog sides for selection controls.
func (s *Session) LanguageOptions() (source, target []domain.LanguageOption) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Options(s.state.Catalog.Source), catalog.Options(s.state.Catalog.Target)
}

// SelectFiles keeps the first file and clears the error banner.
func (s *Session) SelectFiles(files []domain.SelectedFile) {
	s.intake(files, false)
}

// DropFiles is SelectFiles for drag-and-drop; it also clears the drag flag.
func (s *Session) DropFiles(files []domain.SelectedFile) {
	s.intake(files, true)
}

func (s *Session) intake(files []domain.SelectedFile, dropped bool) {
	s.mu.Lock()
	dragCleared := dropped && s.state.DragActive
	if dropped {
		s.state.DragActive = false
	}
	if len(files) == 0 {
		s.mu.Unlock()
		if dragCleared {
			s.publish(jobs.Event{Type: jobs.EventTypeDrag, Message: "false"})
		}
		return
	}
	file := files[0]
	s.state.SelectedFile = &file
	s.state.ErrorMessage = ""
	s.mu.Unlock()

	if len(files) > 1 {
		s.logger.Debug("extra files discarded", zap.Int("count", len(files)-1))
	}
	if dragCleared {
		s.publish(jobs.Event{Type: jobs.EventTypeDrag, Message: "false"})
	}
	s.publish(jobs.Event{Type: jobs.EventTypeFile, FileName: file.Name})
}

// SetDragActive records whether a drag is hovering over the drop target and
// publishes a drag event when the flag flips.
func (s *Session) SetDragActive(active bool) {
	s.mu.Lock()
	changed := s.state.DragActive != active
	s.state.DragActive = active
	s.mu.Unlock()

	if changed {
		s.publish(jobs.Event{Type: jobs.EventTypeDrag, Message: strconv.FormatBool(active)})
	}
}

// SetSourceLanguage selects a source language from the catalog.
func (s *Session) SetSourceLanguage(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Catalog.HasSource(code) {
		return fmt.Errorf("source %q: %w", code, ErrUnknownLanguage)
	}
	s.state.Options.SourceLanguage = code
	return nil
}

// SetTargetLanguage selects a target language from the catalog.
func (s *Session) SetTargetLanguage(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Catalog.HasTarget(code) {
		return fmt.Errorf("target %q: %w", code, ErrUnknownLanguage)
	}
	s.state.Options.TargetLanguage = code
	return nil
}

// SetModel selects the transcription model. Only the default model exists.
func (s *Session) SetModel(model string) error {
	if model != domain.DefaultModel {
		return fmt.Errorf("unsupported model %q", model)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Options.Model = model
	return nil
}

// ToggleMenu flips the menu overlay and returns the new value.
func (s *Session) ToggleMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MenuOpen = !s.state.MenuOpen
	return s.state.MenuOpen
}

// SetMenuOpen opens or closes the menu overlay.
func (s *Session) SetMenuOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MenuOpen = open
}

// Submission is one started upload that has not settled yet.
type Submission struct {
	ID      string
	Request transcribe.Request

	session *Session
	started time.Time
}

// Begin validates the selection and moves to Processing, clearing the
// previous result and error. It performs no network I/O.
func (s *Session) Begin() (*Submission, error) {
	s.mu.Lock()
	if s.state.SelectedFile == nil {
		s.state.ErrorMessage = MessageFor(ErrNoFileSelected)
		s.mu.Unlock()
		s.publish(jobs.Event{Type: jobs.EventTypeError, Message: MessageFor(ErrNoFileSelected)})
		return nil, ErrNoFileSelected
	}

	id := s.newID()
	started := s.now()
	if err := s.jobs.Start(id, started); err != nil {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	s.state.Processing = domain.ProcessingInProgress
	s.state.ErrorMessage = ""
	s.state.Result = domain.RequestResult{}
	s.state.ProcessingTime = 0
	req := transcribe.Request{
		File:           *s.state.SelectedFile,
		SourceLanguage: s.state.Options.SourceLanguage,
		TargetLanguage: s.state.Options.TargetLanguage,
		Model:          s.state.Options.Model,
	}
	s.mu.Unlock()

	s.publish(jobs.Event{JobID: id, Type: jobs.EventTypeStatus, State: domain.ProcessingInProgress, FileName: req.File.Name})
	return &Submission{ID: id, Request: req, session: s, started: started}, nil
}

// Run sends the upload and settles the session back to Idle whatever the
// outcome. On failure the error banner carries the mapped message.
func (sub *Submission) Run(ctx context.Context) (domain.RequestResult, error) {
	s := sub.session
	result, err := s.client.Transcribe(ctx, sub.Request)
	finished := s.now()

	elapsed := finished.Sub(sub.started).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	s.mu.Lock()
	if err != nil {
		s.state.ErrorMessage = MessageFor(err)
	} else {
		s.state.Result = result.RequestResult()
		s.state.ProcessingTime = elapsed
	}
	s.state.Processing = domain.ProcessingIdle
	message := s.state.ErrorMessage
	s.mu.Unlock()

	if settleErr := s.jobs.Settle(sub.ID); settleErr != nil {
		s.logger.Warn("settle submission", zap.String("id", sub.ID), zap.Error(settleErr))
	}

	if err != nil {
		s.logger.Error("transcription failed", zap.String("id", sub.ID), zap.Error(err))
		s.publish(jobs.Event{JobID: sub.ID, Type: jobs.EventTypeError, Message: message})
		s.publish(jobs.Event{JobID: sub.ID, Type: jobs.EventTypeStatus, State: domain.ProcessingIdle})
		return domain.RequestResult{}, err
	}

	s.logger.Info("transcription completed",
		zap.String("id", sub.ID),
		zap.String("file", sub.Request.File.Name),
		zap.Float64("seconds", elapsed),
	)
	s.publish(jobs.Event{JobID: sub.ID, Type: jobs.EventTypeResult, ProcessingTime: elapsed})
	s.publish(jobs.Event{JobID: sub.ID, Type: jobs.EventTypeStatus, State: domain.ProcessingIdle})
	return result.RequestResult(), nil
}

// Submit runs Begin and Run back to back.
func (s *Session) Submit(ctx context.Context) (domain.RequestResult, error) {
	sub, err := s.Begin()
	if err != nil {
		return domain.RequestResult{}, err
	}
	return sub.Run(ctx)
}

// PlayTranslatedAudio decodes the current translated audio and starts it on
// handle. Decode failures are surfaced on the error banner.
func (s *Session) PlayTranslatedAudio(ctx context.Context, handle playback.Handle) (playback.Resource, error) {
	s.mu.RLock()
	payload := s.state.Result.TranslatedAudio
	s.mu.RUnlock()

	if payload == "" {
		return playback.Resource{}, playback.ErrNoAudio
	}

	res, err := playback.Play(ctx, handle, payload)
	if err != nil {
		message := MessageFor(err)
		s.mu.Lock()
		s.state.ErrorMessage = message
		s.mu.Unlock()
		s.publish(jobs.Event{Type: jobs.EventTypeError, Message: message})
		return playback.Resource{}, err
	}

	s.publish(jobs.Event{Type: jobs.EventTypePlay, Message: res.MIMEType})
	return res, nil
}

// IsProcessing reports whether a submission is outstanding.
func (s *Session) IsProcessing() bool {
	return s.jobs.IsRunning()
}

func (s *Session) publish(event jobs.Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
