package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

type transformOutput struct {
	transform.Result
	Unit string `json:"unit,omitempty"`
	Band string `json:"band"`
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "transform [text|-]",
		Aliases: []string{"extract"},
		Short:   "Run the text engine over already-recognized OCR text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			r := transform.Analyze(text)
			return printJSON(cmd.OutOrStdout(), transformOutput{
				Result: r,
				Unit:   string(transform.DetectWeightUnit(transform.Clean(text))),
				Band:   string(transform.Band(r.Confidence)),
			})
		},
	}
}

func newSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split [text|-]",
		Short: "Split text holding several tags and transform each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), transform.AnalyzeItems(text))
		},
	}
}

func newScoreCmd() *cobra.Command {
	var item transform.Item
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an extraction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := transform.Score(item)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"confidence": s,
				"band":       transform.Band(s),
			})
		},
	}
	cmd.Flags().StringVar(&item.Name, "name", "", "item name")
	cmd.Flags().StringVar(&item.Brand, "brand", "", "brand")
	cmd.Flags().Float64Var(&item.Price, "price", 0, "price")
	cmd.Flags().Float64Var(&item.Weight, "weight", 0, "normalized weight")
	return cmd
}
