package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricetag-ocr/internal/app"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

type rootOptions struct {
	verbose bool
	dbURL   string
	engine  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pricetag",
		Short:         "Extract item name, brand, price and weight from price-tag photos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.dbURL, "db", "", "database URL (overrides DB_URL)")
	cmd.PersistentFlags().StringVar(&opts.engine, "engine", "", "local OCR engine: gosseract or tesseract-cli (overrides OCR_ENGINE)")

	cmd.AddCommand(
		newTransformCmd(),
		newSplitCmd(),
		newScoreCmd(),
		newAnalyzeCmd(opts),
		newBatchCmd(opts),
		newModeCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := common.NewLogger(os.Stderr, level, false)
	slog.SetDefault(logger)
	return logger
}

// openApp loads config from the environment, applies flag overrides and wires the service.
func (o *rootOptions) openApp(ctx context.Context) (*app.App, *common.Config, error) {
	cfg := common.LoadConfig()
	if o.dbURL != "" {
		cfg.Database.DSN = o.dbURL
	}
	if o.engine != "" {
		cfg.OCR.Engine = o.engine
	}
	a, err := app.New(ctx, cfg, o.logger())
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

// textArg joins args, or reads stdin when there are none or the only one is "-".
func textArg(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(in)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
