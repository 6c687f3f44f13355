package commands

import (
	"github.com/cloo-solutions/docqa/internal/cli"
	"github.com/spf13/cobra"
)

// RootCmd assembles the docqa command tree.
func RootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about and summarize long documents",
		Long: `docqa splits a document into chunks that fit a model's context, sends one
request per chunk and joins the results in document order.

Supported formats: .txt, .md, .pdf, .csv, .docx, .html

Environment variables:
  DOCQA_LLM_API_KEY    API key for the chat endpoint (required)
  DOCQA_LLM_BASE_URL   OpenAI-compatible endpoint (default: Groq)
  DOCQA_LLM_MODEL      Chat model (default: llama3-8b-8192)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format: text or json")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(AskCmd())
	rootCmd.AddCommand(SummarizeCmd())
	rootCmd.AddCommand(ServeCmd())

	return rootCmd
}
