package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"akara-desktop/internal/catalog"
	"akara-desktop/internal/domain"
	"akara-desktop/internal/playback"
	"akara-desktop/internal/session"
)

type transcribeOptions struct {
	source     string
	target     string
	model      string
	audioOut   string
	noProgress bool
}

// fileResult is one line of transcribe output.
type fileResult struct {
	File           string  `json:"file" yaml:"file"`
	Transcript     string  `json:"transcript,omitempty" yaml:"transcript,omitempty"`
	Translation    string  `json:"translation,omitempty" yaml:"translation,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty" yaml:"processing_time,omitempty"`
	AudioPath      string  `json:"audio_path,omitempty" yaml:"audio_path,omitempty"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
}

func newTranscribeCmd(root *rootOptions) *cobra.Command {
	opts := &transcribeOptions{}
	defaults := domain.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "transcribe FILE...",
		Short: "Transcribe and translate audio files",
		Long: `Transcribe and translate audio files.

Files are uploaded one at a time. With --audio-out the translated speech is
written into that directory as <name>.<target>.<ext>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", defaults.SourceLanguage, "source language code")
	cmd.Flags().StringVarP(&opts.target, "target", "t", defaults.TargetLanguage, "target language code")
	cmd.Flags().StringVarP(&opts.model, "model", "m", defaults.Model, "transcription model")
	cmd.Flags().StringVarP(&opts.audioOut, "audio-out", "o", "", "directory for translated audio")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

func runTranscribe(cmd *cobra.Command, root *rootOptions, opts *transcribeOptions, files []string) error {
	ctx := cmd.Context()
	logger := root.logger.Named("transcribe")

	sess := session.New(root.client, session.WithLogger(logger))
	loaded, usedFallback := catalog.NewLoader(root.client, logger).Load(ctx)
	if usedFallback {
		logger.Info("using built-in language table")
	}
	sess.ReplaceCatalog(loaded)

	if err := sess.SetSourceLanguage(opts.source); err != nil {
		return err
	}
	if err := sess.SetTargetLanguage(opts.target); err != nil {
		return err
	}
	if err := sess.SetModel(opts.model); err != nil {
		return err
	}

	if opts.audioOut != "" {
		if err := os.MkdirAll(opts.audioOut, 0o755); err != nil {
			return fmt.Errorf("create audio output directory: %w", err)
		}
	}

	bar := newProgress(cmd.ErrOrStderr(), len(files), !opts.noProgress && root.format == formatText)
	results := make([]fileResult, 0, len(files))
	failed := 0

	for _, path := range files {
		res := transcribeOne(cmd, sess, opts, path)
		if res.Error != "" {
			failed++
			logger.Warn("file failed", zap.String("file", path), zap.String("error", res.Error))
		}
		results = append(results, res)
		bar.increment()
	}
	bar.wait()

	if err := writeResults(cmd.OutOrStdout(), results, root.format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// transcribeOne runs a single file through the session.
func transcribeOne(cmd *cobra.Command, sess *session.Session, opts *transcribeOptions, path string) fileResult {
	res := fileResult{File: path}

	file := domain.SelectedFile{Path: path, Name: filepath.Base(path)}
	info, err := os.Stat(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	file.Size = info.Size()
	sess.SelectFiles([]domain.SelectedFile{file})

	result, err := sess.Submit(cmd.Context())
	if err != nil {
		res.Error = session.MessageFor(err)
		return res
	}
	res.Transcript = result.Transcript
	res.Translation = result.Translation
	res.ProcessingTime = sess.Snapshot().ProcessingTime

	if opts.audioOut == "" || !result.HasAudio() {
		return res
	}

	decoded, err := playback.Decode(result.TranslatedAudio)
	if err != nil {
		res.Error = session.MessageFor(err)
		return res
	}
	stem := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	target := filepath.Join(opts.audioOut, stem+"."+opts.target+decoded.Extension())

	if _, err := sess.PlayTranslatedAudio(cmd.Context(), &playback.FileHandle{Path: target}); err != nil {
		res.Error = err.Error()
		return res
	}
	res.AudioPath = target
	return res
}

func writeResults(w io.Writer, results []fileResult, format string) error {
	if format != formatText {
		return encode(w, format, results)
	}

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", res.File)
		if res.Error != "" {
			fmt.Fprintf(w, "error: %s\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "Transcript:\n%s\n", res.Transcript)
		fmt.Fprintf(w, "Translation:\n%s\n", res.Translation)
		fmt.Fprintf(w, "Processed in %.2fs\n", res.ProcessingTime)
		if res.AudioPath != "" {
			fmt.Fprintf(w, "Translated audio: %s\n", res.AudioPath)
		}
	}
	return nil
}
