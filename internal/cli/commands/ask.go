package commands

import (
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/spf13/cobra"
)

// AskCmd answers a question about a document.
func AskCmd() *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "ask <file>",
		Short: "Answer a question about a document",
		Long: `Splits the document into chunks and asks the question against each one,
carrying the trailing text of earlier chunks along as context. The answers are
printed in chunk order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runDocument(cmd, cfg, args[0], domain.AnswerTask{Question: question})
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to ask about the document")
	_ = cmd.MarkFlagRequired("question")
	addPipelineFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}
