package domain

// ProcessingState tracks whether a submission is outstanding.
type ProcessingState string

const (
	ProcessingIdle       ProcessingState = "idle"
	ProcessingInProgress ProcessingState = "processing"
)

// DefaultModel is the only transcription model the backend offers.
const DefaultModel = "bhashini"

// Settings contains persisted desktop configuration.
type Settings struct {
	BackendURL string `json:"backendUrl"`
	OutputDir  string `json:"outputDir"`
}

// SelectedFile references a user-chosen audio file on disk.
type SelectedFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Options holds the user's current model and language selection.
type Options struct {
	Model          string `json:"model"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// DefaultOptions returns the selection shown on first render.
func DefaultOptions() Options {
	return Options{
		Model:          DefaultModel,
		SourceLanguage: "hi",
		TargetLanguage: "en",
	}
}

// RequestResult is the output of one successful submission.
type RequestResult struct {
	Transcript      string `json:"transcript"`
	Translation     string `json:"translation"`
	TranslatedAudio string `json:"translatedAudio"`
}

// HasAudio reports whether translated audio is available for playback.
func (r RequestResult) HasAudio() bool {
	return r.TranslatedAudio != ""
}
