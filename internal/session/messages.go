package session

import (
	"errors"

	"akara-desktop/internal/playback"
	"akara-desktop/internal/transcribe"
)

// Banner texts shown on the Home view.
const (
	MessageNoFile        = "Please select an audio file first"
	MessageNotConfigured = "Transcription service is not configured. Please check the backend API credentials."
	MessageGeneric       = "Failed to process audio. Please try again."
	MessageBadAudio      = "Translated audio could not be decoded."
)

// MessageFor maps a pipeline error to the single banner string shown to the user.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoFileSelected) {
		return MessageNoFile
	}
	if errors.Is(err, playback.ErrDecode) {
		return MessageBadAudio
	}

	var statusErr *transcribe.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.ServiceUnavailable() {
			return MessageNotConfigured
		}
		if statusErr.Detail != "" {
			return statusErr.Detail
		}
	}
	return MessageGeneric
}
