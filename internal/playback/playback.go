// Package playback turns the backend's base64 translated audio into a
// playable resource and hands it to a playback handle.
package playback

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIMEType is assumed when the decoded bytes are not recognizable audio.
const DefaultMIMEType = "audio/wav"

var (
	// ErrNoAudio is returned when there is no translated audio to play.
	ErrNoAudio = errors.New("no translated audio available")
	// ErrDecode is returned when the payload is not valid base64.
	ErrDecode = errors.New("translated audio could not be decoded")
)

// Resource is decoded audio with its media type.
type Resource struct {
	MIMEType string
	Data     []byte
}

// URL returns a self-contained data URL usable as an audio element source.
func (r Resource) URL() string {
	return "data:" + r.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Extension returns the file extension for the resource's media type.
func (r Resource) Extension() string {
	return Extension(r.MIMEType)
}

// Extension maps an audio media type to a file extension, ".wav" if unknown.
func Extension(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".wav"
}

// Handle is a native playback target.
type Handle interface {
	Bind(res Resource) error
	Start(ctx context.Context) error
}

// Decode converts a base64 payload into an audio resource.
func Decode(payload string) (Resource, error) {
	trimmed := strings.Join(strings.Fields(payload), "")
	if trimmed == "" {
		return Resource{}, ErrNoAudio
	}

	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return Resource{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return Resource{}, ErrNoAudio
	}

	return Resource{MIMEType: audioType(data), Data: data}, nil
}

// Play decodes payload, binds it to handle, and starts playback. Nothing is
// sent to handle when the payload is empty or malformed.
func Play(ctx context.Context, handle Handle, payload string) (Resource, error) {
	res, err := Decode(payload)
	if err != nil {
		return Resource{}, err
	}
	if err := handle.Bind(res); err != nil {
		return Resource{}, fmt.Errorf("bind audio: %w", err)
	}
	if err := handle.Start(ctx); err != nil {
		return Resource{}, fmt.Errorf("start playback: %w", err)
	}
	return res, nil
}

func audioType(data []byte) string {
	detected := mimetype.Detect(data).String()
	if strings.HasPrefix(detected, "audio/") {
		return detected
	}
	return DefaultMIMEType
}
