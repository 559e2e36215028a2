package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iksnae/merchant-support/internal"
	"github.com/iksnae/merchant-support/internal/export"
)

var (
	format string
	output string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a conversation to a file",
	Long: `Export a conversation in one of several formats (jsonl, md, yaml, json, html).

Without --out the result is written to standard output. When --out names a
directory the file is called <session-id>.<ext>.
Use 'merchant-support list' to see available session IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		sessionID := args[0]

		if output == "" || output == "-" {
			transcript, err := loadTranscript(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if err := exporter.Export(transcript, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "stdout", Err: err}
			}
			return nil
		}

		path, err := exportPath(output, sessionID, exporter.Extension())
		if err != nil {
			return err
		}

		var transcript *internal.Transcript
		steps := []internal.ProgressStep{
			{
				Message: "Loading conversation " + sessionID,
				Fn: func(ctx context.Context) error {
					transcript, err = fetchTranscript(ctx, newClient(), sessionID)
					return err
				},
			},
			{
				Message: "Writing " + path,
				Fn: func(context.Context) error {
					return writeExport(exporter, transcript, path)
				},
			},
		}
		if err := internal.ShowProgressWithSteps(cmd.Context(), steps); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Exported %d message(s) to %s", len(transcript.Messages), path))
		return nil
	},
}

// exportPath resolves --out: an existing directory gets <id>.<ext> inside it
func exportPath(out, sessionID, ext string) (string, error) {
	info, err := os.Stat(out)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(out, sessionID+"."+ext), nil
	case err == nil || os.IsNotExist(err):
		return out, nil
	default:
		return "", fmt.Errorf("failed to check output path: %w", err)
	}
}

func writeExport(exporter export.Exporter, transcript *internal.Transcript, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &internal.ExportError{Format: format, Path: path, Err: cerr}
		}
	}()

	if err := exporter.Export(transcript, f); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (jsonl, md, yaml, json, html)")
	exportCmd.Flags().StringVarP(&output, "out", "o", "", "Output file or directory (default: standard output)")
}
