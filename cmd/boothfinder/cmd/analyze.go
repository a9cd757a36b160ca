package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/expomap/boothfinder/internal/ocr"
	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [image]",
	Short: "Detect booths in a floor plan image",
	Long: `Run booth detection on a raster floor plan image and print the detected
booth set.

Examples:
  boothfinder analyze floorplan.png
  boothfinder analyze floorplan.png --format csv --output booths.csv
  boothfinder analyze floorplan.png --query "acme" --overlay annotated.png`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	overlayPath := cfg.Output.OverlayPath
	if cmd.Flags().Changed("overlay") {
		overlayPath, _ = cmd.Flags().GetString("overlay")
	}
	ocrEnabled := cfg.Pipeline.OCR.Enabled
	if cmd.Flags().Changed("ocr") {
		ocrEnabled, _ = cmd.Flags().GetBool("ocr")
	}
	language := cfg.Pipeline.OCR.Language
	if cmd.Flags().Changed("language") {
		language, _ = cmd.Flags().GetString("language")
	}
	query, _ := cmd.Flags().GetString("query")

	img, err := imaging.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to load image %s: %w", args[0], err)
	}

	var rec ocr.Recognizer
	if ocrEnabled {
		rec = &ocr.TesseractRecognizer{Language: language}
	}

	analyzerCfg := cfg.ToAnalyzerConfig()
	analyzerCfg.OCREnabled = ocrEnabled
	analyzer, err := pipeline.NewAnalyzer(cfg.NewRectangleFinder(), rec, analyzerCfg)
	if err != nil {
		return fmt.Errorf("failed to build analyzer: %w", err)
	}

	res, err := analyzer.Analyze(cmd.Context(), img)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	slog.Info("Floor plan analyzed", "image", args[0], "booths", len(res.Booths))

	if query != "" {
		sr := analyzer.Search(query)
		if sr.Found {
			slog.Info("Search matched a booth", "query", query, "booth_id", sr.BoothID)
		} else {
			slog.Info("Search matched no booth", "query", query)
		}
		res = analyzer.Current()
	}

	out, err := formatResult(res, format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), out)
	}

	if overlayPath != "" {
		ov := pipeline.RenderOverlay(img, res.Booths, pipeline.DefaultOverlayOptions())
		if err := imaging.Save(ov, overlayPath); err != nil {
			return fmt.Errorf("failed to write overlay image: %w", err)
		}
		slog.Info("Overlay written", "path", overlayPath)
	}
	return nil
}

// formatResult serializes a result in the requested output format.
func formatResult(res *pipeline.AnalysisResult, format string) (string, error) {
	switch format {
	case "json":
		return pipeline.ToJSON(res)
	case "yaml":
		return pipeline.ToYAML(res)
	case "csv":
		return pipeline.ToCSV(res)
	case "text":
		return pipeline.ToPlainText(res)
	default:
		return "", fmt.Errorf("unknown output format %q (valid: json, yaml, csv, text)", format)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", "json", "output format (json, yaml, csv, text)")
	analyzeCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	analyzeCmd.Flags().StringP("query", "q", "", "highlight the first booth matching this query")
	analyzeCmd.Flags().String("overlay", "", "write an annotated overlay image to this path")
	analyzeCmd.Flags().Bool("ocr", true, "run text recognition and booth labeling")
	analyzeCmd.Flags().StringP("language", "l", "eng", "recognition language")
}
