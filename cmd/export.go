package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a saved conversation to another format",
	Long: `Export a saved conversation file to json, yaml, md or jsonl.

The output file is named after the input file with the format's extension
and written to --out. Use --out - to write to stdout. JSON output is the
canonical conversation format and can be loaded again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		app, err := newChatApp()
		if err != nil {
			return err
		}
		report, err := app.load(input)
		if err != nil {
			return err
		}

		snap := app.session.ToSnapshot()
		if !report.Timestamp.IsZero() {
			snap.Timestamp = report.Timestamp.Unix()
		}

		if outputDir == "-" {
			if err := exporter.Export(&snap, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "stdout", Err: err}
			}
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		target := filepath.Join(outputDir, base+"."+exporter.Extension())
		if samePath(target, input) {
			return &internal.ExportError{Format: format, Path: target, Err: errors.New("refusing to overwrite the input file")}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d message(s) to %s", len(snap.Messages), target), func() error {
			file, err := os.Create(target)
			if err != nil {
				return &internal.ExportError{Format: format, Path: target, Err: err}
			}
			if err := exporter.Export(&snap, file); err != nil {
				_ = file.Close()
				return &internal.ExportError{Format: format, Path: target, Err: err}
			}
			if err := file.Close(); err != nil {
				return &internal.ExportError{Format: format, Path: target, Err: err}
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d message(s) written to %s", len(snap.Messages), target))
		return nil
	},
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (json, yaml, md, jsonl)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory, or - for stdout")
}
