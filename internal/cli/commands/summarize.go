package commands

import (
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/spf13/cobra"
)

// SummarizeCmd summarizes a document chunk by chunk.
func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a document",
		Long: `Summarizes each chunk of the document on its own, then fits every summary
into the requested word band: long summaries are cut and marked with "...",
short ones carry a note asking for expansion.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDocument(cmd, cfg, args[0], domain.SummarizeTask{Band: cfg.SummaryBand()})
		},
	}

	cmd.Flags().Int("min-words", domain.DefaultSummaryMinWords, "Minimum words per chunk summary (env DOCQA_SUMMARY_MIN_WORDS)")
	cmd.Flags().Int("max-words", domain.DefaultSummaryMaxWords, "Maximum words per chunk summary (env DOCQA_SUMMARY_MAX_WORDS)")
	cmd.Flags().Int("concurrency", 1, "Chunks summarized at once (env DOCQA_SUMMARY_CONCURRENCY)")
	addPipelineFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}
