package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"akara-desktop/internal/catalog"
	"akara-desktop/internal/diagnostics"
	"akara-desktop/internal/domain"
	"akara-desktop/internal/export"
)

// catalogOutput is the structured form of the languages command.
type catalogOutput struct {
	Source   map[string]string `json:"source_languages" yaml:"source_languages"`
	Target   map[string]string `json:"target_languages" yaml:"target_languages"`
	Fallback bool              `json:"fallback" yaml:"fallback"`
}

func newLanguagesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported source and target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, usedFallback := catalog.NewLoader(root.client, root.logger.Named("catalog")).Load(cmd.Context())
			out := cmd.OutOrStdout()

			if root.format != formatText {
				return encode(out, root.format, catalogOutput{
					Source:   loaded.Source,
					Target:   loaded.Target,
					Fallback: usedFallback,
				})
			}

			if usedFallback {
				fmt.Fprintln(out, "(backend unavailable, showing built-in languages)")
			}
			printLanguages(out, "Source languages", catalog.Options(loaded.Source))
			fmt.Fprintln(out)
			printLanguages(out, "Target languages", catalog.Options(loaded.Target))
			return nil
		},
	}
}

func printLanguages(w io.Writer, title string, options []domain.LanguageOption) {
	fmt.Fprintf(w, "%s:\n", title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, opt := range options {
		fmt.Fprintf(tw, "  %s\t%s\n", opt.Code, opt.Name)
	}
	_ = tw.Flush()
}

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend and local output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := diagnostics.NewChecker(root.client).Run(cmd.Context(), root.settings)
			diagnostics.Log(root.logger.Named("health"), report)

			out := cmd.OutOrStdout()
			if root.format != formatText {
				if err := encode(out, root.format, report); err != nil {
					return err
				}
			} else {
				for _, item := range report.Items {
					fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(item.Status)), item.Name, item.Message)
					if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
						fmt.Fprintf(out, "       %s\n", item.Hint)
					}
				}
			}
			if report.HasFailures {
				return fmt.Errorf("health check failed")
			}
			return nil
		},
	}
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		offset int
		xlsx   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transcriptions stored by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative")
			}

			page, err := root.client.History(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("fetch history: %w", err)
			}

			out := cmd.OutOrStdout()
			if xlsx != "" {
				if err := export.ToExcel(page.History, xlsx); err != nil {
					return err
				}
				root.logger.Info("history exported", zap.String("path", xlsx), zap.Int("rows", len(page.History)))
				fmt.Fprintf(out, "exported %d entries to %s\n", len(page.History), xlsx)
				return nil
			}

			if root.format != formatText {
				return encode(out, root.format, page)
			}

			fmt.Fprintf(out, "Showing %d of %d (offset %d)\n", len(page.History), page.Total, page.Offset)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tFILE\tLANGS\tSECONDS\tTRANSLATION")
			for _, entry := range page.History {
				fmt.Fprintf(tw, "%s\t%s\t%s->%s\t%.1f\t%s\n",
					entry.CreatedAt, entry.Filename, entry.SourceLanguage, entry.TargetLanguage,
					entry.ProcessingTime, truncate(entry.Translation, 60))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "export the page to an Excel file instead of printing")
	return cmd
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
