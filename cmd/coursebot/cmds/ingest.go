package cmds

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/spf13/cobra"
)

func NewIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file...>",
		Short: "Index courses from YAML catalogs or markdown course documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chunkSize, _ := cmd.Flags().GetInt("chunk-size")

			a, err := newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			courses, chunks := 0, 0
			for _, path := range args {
				cs, err := loadCourses(path, chunkSize)
				if err != nil {
					return err
				}
				n, err := coursestore.IngestCourses(cmd.Context(), a.Store, cs)
				if err != nil {
					return err
				}
				courses += len(cs)
				chunks += n
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d courses (%d chunks)\n", courses, chunks)
			return err
		},
	}
	cmd.Flags().Int("chunk-size", coursestore.DefaultChunkSize, "Maximum chunk size in characters for markdown documents")
	return cmd
}

// loadCourses picks the loader from the file extension.
func loadCourses(path string, chunkSize int) ([]coursestore.Course, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		c, err := coursestore.LoadMarkdownCourseFile(path, chunkSize)
		if err != nil {
			return nil, err
		}
		return []coursestore.Course{*c}, nil
	default:
		return coursestore.LoadCatalogFile(path)
	}
}
