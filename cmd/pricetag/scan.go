package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricetag-ocr/internal/batch"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var hybrid bool
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Scan one price-tag image with the saved OCR mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := extract.NewImage(args[0])
			if err != nil {
				return err
			}
			a, _, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			analyze := a.Service.Analyze
			if hybrid {
				analyze = a.Service.AnalyzeHybrid
			}
			res, err := analyze(cmd.Context(), img)
			if err != nil {
				return err
			}
			out := map[string]any{
				"name":     res.Name,
				"brand":    res.Brand,
				"price":    res.Price,
				"weight":   res.Weight,
				"source":   res.Source,
				"ocr_text": res.OCRText,
			}
			if res.Confidence != nil {
				out["confidence"] = *res.Confidence
				out["band"] = transform.Band(*res.Confidence)
			}
			if len(res.AllPrices) > 0 {
				out["all_prices"] = res.AllPrices
			}
			if len(res.AllItems) > 0 {
				out["all_items"] = res.AllItems
			}
			if res.ScanID != uuid.Nil {
				out["scan_id"] = res.ScanID
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&hybrid, "hybrid", false, "recognize locally, then let the analysis API parse the text")
	return cmd
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		out         string
		hybrid      bool
		concurrency int
		hidden      bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dir|image>...",
		Short: "Scan many images and export a CSV or XLSX report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := opts.logger()

			var paths []string
			for _, arg := range args {
				fi, err := os.Stat(arg)
				if err != nil {
					return err
				}
				if !fi.IsDir() {
					paths = append(paths, arg)
					continue
				}
				found, stats, err := batch.CollectImages(arg, !hidden)
				if err != nil {
					return err
				}
				logger.Info("batch.collect.ok", "dir", arg, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
				paths = append(paths, found...)
			}
			if len(paths) == 0 {
				return errors.New("no images found")
			}

			if out == "" {
				out = "pricetag-batch.csv"
			}
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".csv" && ext != ".xlsx" {
				return fmt.Errorf("--out must end in .csv or .xlsx, got %q", out)
			}

			a, cfg, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if concurrency <= 0 {
				concurrency = cfg.Batch.Concurrency
			}

			analyze := batch.AnalyzeFunc(a.Service.Analyze)
			if hybrid {
				analyze = a.Service.AnalyzeHybrid
			}
			stderr := cmd.ErrOrStderr()
			runner := batch.NewRunner(analyze, logger,
				batch.WithConcurrency(concurrency),
				batch.WithProgress(func(done, total int) {
					_, _ = fmt.Fprintf(stderr, "\r%d/%d", done, total)
				}),
			)
			results, err := runner.Run(ctx, paths)
			_, _ = fmt.Fprintln(stderr)
			if err != nil {
				return err
			}

			if err := writeReport(out, ext, results); err != nil {
				return err
			}
			sum := batch.Summarize(results)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d images, %d failed, avg %s ms, wrote %s\n",
				sum.Total, sum.Failed, strconv.FormatInt(sum.Average.Milliseconds(), 10), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "report path ending in .csv or .xlsx (default pricetag-batch.csv)")
	cmd.Flags().BoolVar(&hybrid, "hybrid", false, "recognize locally, then let the analysis API parse the text")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "images in flight (default BATCH_CONCURRENCY)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include hidden files and directories")
	return cmd
}

func writeReport(path, ext string, results []batch.ItemResult) error {
	if ext == ".xlsx" {
		b, err := batch.ExportXLSX(results)
		if err != nil {
			return err
		}
		return os.WriteFile(path, b, 0o644)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := batch.WriteCSV(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
