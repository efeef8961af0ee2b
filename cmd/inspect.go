package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/config"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [dir]",
	Short: "Parse and chunk course documents without indexing them",
	Long: `inspect runs the document pipeline offline: it parses every
supported file in the given directory (default: the configured docs
folder), chunks the content and reports what would be indexed. No API
keys are needed and nothing is embedded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	dir := "./docs"
	if len(args) > 0 {
		dir = args[0]
	} else if cfg, err := config.Load(); err == nil {
		dir = cfg.DocsDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	chunker := course.NewChunker(config.DefaultChunkSize, config.DefaultChunkOverlap)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !course.SupportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	totalChunks := 0
	for _, name := range names {
		path := filepath.Join(dir, name)

		text, err := course.ExtractText(path)
		if err != nil {
			fmt.Printf("%-40s SKIPPED: %v\n", name, err)
			continue
		}

		crs, sections, err := course.ParseDocument(name, strings.NewReader(text))
		if err != nil {
			fmt.Printf("%-40s SKIPPED: %v\n", name, err)
			continue
		}

		chunks := chunker.ChunkCourse(crs, sections)
		totalChunks += len(chunks)
		fmt.Printf("%-40s %q: %d lessons, %d chunks\n",
			name, crs.Title, len(crs.Lessons), len(chunks))
	}

	fmt.Printf("\n%d documents, %d chunks total\n", len(names), totalChunks)
	return nil
}
