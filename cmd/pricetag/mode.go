package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newModeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Show or change the OCR mode (local engine or remote analysis)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print whether local OCR is enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, _, err := opts.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				return printMode(cmd, a.Service.IsLocalOCREnabled(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "set <true|false>",
			Short: "Enable or disable local OCR",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := strconv.ParseBool(args[0])
				if err != nil {
					return fmt.Errorf("mode must be true or false: %w", err)
				}
				a, _, err := opts.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Service.SetOCRMode(cmd.Context(), on); err != nil {
					return err
				}
				return printMode(cmd, on)
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Flip the OCR mode",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, _, err := opts.openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				on, err := a.Service.ToggleOCRMode(cmd.Context())
				if err != nil {
					return err
				}
				return printMode(cmd, on)
			},
		},
	)
	return cmd
}

func printMode(cmd *cobra.Command, on bool) error {
	mode := "remote"
	if on {
		mode = "local"
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{"use_local_ocr": on, "mode": mode})
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			recs, err := a.Scans.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range recs {
				conf := "-"
				if r.Confidence != nil {
					conf = strconv.FormatFloat(*r.Confidence*100, 'f', 0, 64) + "%"
				}
				if _, err := fmt.Fprintf(w, "%s  %s  %-6s %-7s %-30q $%.2f  %s  %s\n",
					r.CreatedAt.Format(time.DateTime), r.ID, r.Source, r.Status, r.Name, r.Price, conf, r.ErrorMessage); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows to show")
	return cmd
}
