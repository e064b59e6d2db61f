package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileHandle "plays" audio by writing it to a file, for headless use.
type FileHandle struct {
	Path string

	mu  sync.Mutex
	res Resource
}

// Bind stores the resource to be written.
func (h *FileHandle) Bind(res Resource) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.res = res
	return nil
}

// Start writes the bound resource to Path.
func (h *FileHandle) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	res := h.res
	h.mu.Unlock()

	if len(res.Data) == 0 {
		return errors.New("no audio bound")
	}
	if h.Path == "" {
		return errors.New("output path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	return os.WriteFile(h.Path, res.Data, 0o644)
}

// FuncHandle adapts a callback that receives the resource's playable URL.
type FuncHandle struct {
	mu   sync.Mutex
	src  string
	Emit func(ctx context.Context, src string) error
}

// Bind converts the resource into its transient URL.
func (h *FuncHandle) Bind(res Resource) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.src = res.URL()
	return nil
}

// Start forwards the bound URL to Emit.
func (h *FuncHandle) Start(ctx context.Context) error {
	h.mu.Lock()
	src := h.src
	h.mu.Unlock()

	if src == "" {
		return errors.New("no audio bound")
	}
	if h.Emit == nil {
		return errors.New("no playback target configured")
	}
	return h.Emit(ctx, src)
}
