// Package cli holds helpers shared by the docqa command tree. The
// --help-json flag prints a machine-readable description of docqa ask,
// docqa summarize and docqa serve so scripts can discover their flags.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSchema describes one docqa flag, e.g. --question on docqa ask.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// CommandSchema describes a docqa command and the subcommands beneath it.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema walks cmd and its visible subcommands.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Description: cmd.Short,
		Long:        cmd.Long,
		Flags:       extractFlags(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func extractFlags(cmd *cobra.Command) []FlagSchema {
	var flags []FlagSchema

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == helpJSONFlag || f.Name == "help" {
			return
		}
		flags = append(flags, flagToSchema(f))
	})

	return flags
}

func flagToSchema(f *pflag.Flag) FlagSchema {
	_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
	return FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
		Required:    required,
	}
}

const helpJSONFlag = "help-json"

// WriteSchema encodes the schema of cmd as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// AddHelpJSONFlag registers --help-json on the docqa root so every
// subcommand inherits it.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Output command schema as JSON")
}

// HandleHelpJSON prints the schema of the command named in args when
// --help-json is present and reports whether it did. It runs before
// Execute so that required flags such as docqa ask --question do not fail
// validation first.
func HandleHelpJSON(w io.Writer, rootCmd *cobra.Command, args []string) (bool, error) {
	for i, arg := range args {
		if arg == "--"+helpJSONFlag {
			return true, WriteSchema(w, findTargetCommand(rootCmd, args[:i]))
		}
	}
	return false, nil
}

// CheckHelpJSON is HandleHelpJSON over os.Args, exiting once the schema
// has been written.
func CheckHelpJSON(rootCmd *cobra.Command) {
	handled, err := HandleHelpJSON(os.Stdout, rootCmd, os.Args[1:])
	if !handled {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

// findTargetCommand descends through every arg naming a subcommand. Flags,
// flag values and file paths are skipped, so "-o json summarize doc.pdf"
// resolves to summarize.
func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	for i, arg := range args {
		for _, sub := range cmd.Commands() {
			if sub.Name() == arg || sub.HasAlias(arg) {
				return findTargetCommand(sub, args[i+1:])
			}
		}
	}
	return cmd
}
