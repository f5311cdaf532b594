package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"raybands/internal/export"
	"raybands/internal/format"
	"raybands/internal/logging"
	"raybands/internal/propdump"
)

var propsFlags struct {
	processID int
	outputDir string
	base      string
	markdown  bool
	mock      bool
}

var propsCmd = &cobra.Command{
	Use:   "props <object-key> [object-key...]",
	Short: "Discover and export object properties from a live session",
	Long: `Dump the available properties of each object key, fetch their current
values, and export them: scalars into a CSV, array-valued properties into
the JSON bundle.

  raybands props --process 4242 Sources.LaserA Detectors.D1
  raybands props --mock Sources.LaserA`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProps,
}

func init() {
	f := propsCmd.Flags()
	f.IntVar(&propsFlags.processID, "process", 0, "Process ID of the running simulation")
	f.StringVarP(&propsFlags.outputDir, "output", "o", filepath.Join(".raybands", "output"), "Export directory")
	f.StringVar(&propsFlags.base, "base", "props", "Export base name")
	f.BoolVar(&propsFlags.markdown, "markdown", false, "Render the property table as Markdown")
	f.BoolVar(&propsFlags.mock, "mock", false, "Use the in-memory mock session")
}

func runProps(cmd *cobra.Command, args []string) error {
	connect, _, err := sessionWiring(propsFlags.mock)
	if err != nil {
		return err
	}

	h, err := connect(propsFlags.processID)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer h.Close()

	log := logging.New("props")
	rows, bundle, err := propdump.Collect(cmd.Context(), h, args, log)
	if err != nil {
		return fmt.Errorf("props: %w", err)
	}

	if err := os.MkdirAll(propsFlags.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	now := time.Now()
	csvPath := filepath.Join(propsFlags.outputDir,
		fmt.Sprintf("%s_%s.csv", propsFlags.base, now.Format("20060102-150405")))
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := export.WritePropertyCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	w := &export.Writer{Dir: propsFlags.outputDir, Base: propsFlags.base, RunTime: now}
	bundlePath, err := w.WriteBundle(bundle)
	if err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}

	mode := format.ASCII
	if propsFlags.markdown {
		mode = format.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.PropsTable(rows, mode))
	fmt.Fprintf(cmd.OutOrStdout(), "\nCSV written to: %s\nBundle written to: %s\n", csvPath, bundlePath)
	return nil
}
