// Package cmd implements the ragchat command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "ragchat - a course materials chatbot",
	Long: `ragchat answers questions about course materials.

On startup it ingests the configured documents folder into an in-memory
vector index, then serves an HTTP API whose answers are grounded in the
indexed content via tool-calling retrieval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Serving is the default action.
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
