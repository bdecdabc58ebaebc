package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/chunking"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/extractor/document"
)

func (rt *runtime) chunkCmd() *cobra.Command {
	var (
		size    int
		overlap int
		docType string
	)
	cmd := &cobra.Command{
		Use:   "chunk FILE",
		Short: "Split a document into overlapping word windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 || overlap < 0 || overlap >= size {
				return fmt.Errorf("invalid window: size=%d overlap=%d", size, overlap)
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := document.ExtractBytes(args[0], raw)
			if err != nil {
				return err
			}
			chunks := chunking.NewSplitter(size, overlap).Chunk(text, filepath.Base(args[0]), docType)

			return rt.print(cmd, chunks, func(w io.Writer) {
				fmt.Fprintf(w, "%d chunks from %s\n", len(chunks), filepath.Base(args[0]))
				for _, c := range chunks {
					fmt.Fprintf(w, "[%d] %s\n", c.ChunkIndex, preview(c.Text, 100))
				}
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", rt.cfg.ChunkSize, "words per chunk")
	cmd.Flags().IntVar(&overlap, "overlap", rt.cfg.ChunkOverlap, "words shared by consecutive chunks")
	cmd.Flags().StringVar(&docType, "doc-type", "general", "document type recorded on each chunk")
	return cmd
}

