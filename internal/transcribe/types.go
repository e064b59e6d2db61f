package transcribe

import "akara-desktop/internal/domain"

// Request describes one transcription upload.
type Request struct {
	File           domain.SelectedFile
	SourceLanguage string
	TargetLanguage string
	Model          string
}

// Result is the backend's answer to a transcription upload.
type Result struct {
	ID              string  `json:"id"`
	Transcript      string  `json:"transcript"`
	Translation     string  `json:"translation"`
	TranslatedAudio string  `json:"translated_audio"`
	SourceLanguage  string  `json:"source_language"`
	TargetLanguage  string  `json:"target_language"`
	ModelName       string  `json:"model_name"`
	ProcessingTime  float64 `json:"processing_time"`
}

// RequestResult projects the fields the Home view displays.
func (r Result) RequestResult() domain.RequestResult {
	return domain.RequestResult{
		Transcript:      r.Transcript,
		Translation:     r.Translation,
		TranslatedAudio: r.TranslatedAudio,
	}
}

// Health is the body of GET /api/health.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// ServiceHealth is the body of GET /api/transcription/health.
type ServiceHealth struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// languagesResponse is the body of GET /api/transcription/languages.
type languagesResponse struct {
	SourceLanguages map[string]string `json:"source_languages"`
	TargetLanguages map[string]string `json:"target_languages"`
	Models          map[string]string `json:"models"`
}

// HistoryEntry is one abbreviated past transcription.
type HistoryEntry struct {
	ID             string  `json:"id" yaml:"id"`
	Filename       string  `json:"filename" yaml:"filename"`
	Transcript     string  `json:"transcript" yaml:"transcript"`
	Translation    string  `json:"translation" yaml:"translation"`
	SourceLanguage string  `json:"source_language" yaml:"source_language"`
	TargetLanguage string  `json:"target_language" yaml:"target_language"`
	ModelName      string  `json:"model_name" yaml:"model_name"`
	ProcessingTime float64 `json:"processing_time" yaml:"processing_time"`
	CreatedAt      string  `json:"created_at" yaml:"created_at"`
}

// HistoryPage is one page of GET /api/transcription/history.
type HistoryPage struct {
	Total   int            `json:"total" yaml:"total"`
	Limit   int            `json:"limit" yaml:"limit"`
	Offset  int            `json:"offset" yaml:"offset"`
	History []HistoryEntry `json:"history" yaml:"history"`
}
