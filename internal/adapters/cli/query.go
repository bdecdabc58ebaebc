package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

func (rt *runtime) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show an ingestion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				job, err := b.Jobs.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return rt.print(cmd, job, func(w io.Writer) { writeJob(w, job) })
			})
		},
	}
}

func (rt *runtime) askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask LOAN_ID QUESTION...",
		Short: "Answer a question from a loan's documents",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				res, err := b.Extraction.Answer(cmd.Context(), question, args[0])
				if err != nil {
					return err
				}
				return rt.print(cmd, res, func(w io.Writer) {
					fmt.Fprintln(w, res.Answer)
					fmt.Fprintf(w, "\nconfidence %s, strategy %s\n", percent(res.Confidence), res.Strategy)
					writeSources(w, res.Sources)
				})
			})
		},
	}
}

func (rt *runtime) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify LOAN_ID CLAIM...",
		Short: "Check whether a loan's documents support a claim",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim := strings.Join(args[1:], " ")
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				res, err := b.Extraction.VerifyClaim(cmd.Context(), claim, args[0])
				if err != nil {
					return err
				}
				return rt.print(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "%s (confidence %s)\n", res.Conclusion, percent(res.Confidence))
					if res.Answer != "" {
						fmt.Fprintf(w, "supporting text: %s\n", res.Answer)
					}
					writeSources(w, res.Evidence)
				})
			})
		},
	}
}

func (rt *runtime) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract LOAN_ID",
		Short: "Answer the standard green loan questions for a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				out, err := b.Extraction.ExtractAll(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return rt.print(cmd, out, func(w io.Writer) {
					tw := newTable(w)
					fmt.Fprintln(tw, "QUESTION\tFOUND\tCONFIDENCE\tANSWER")
					for _, f := range out {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Question, yesNo(f.Found), percent(f.Confidence), preview(f.Answer, 60))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func (rt *runtime) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [LOAN_ID]",
		Short: "Show index statistics for one loan or the whole index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				if len(args) == 0 {
					stats := b.Index.GlobalStats()
					return rt.print(cmd, stats, func(w io.Writer) {
						fmt.Fprintf(w, "%d chunks across %d loans\n", stats.TotalChunks, stats.UniqueLoans)
					})
				}
				stats := b.Index.Stats(args[0])
				return rt.print(cmd, stats, func(w io.Writer) {
					fmt.Fprintf(w, "loan %s: %d chunks\n", stats.LoanID, stats.ChunkCount)
					for _, s := range stats.Sources {
						fmt.Fprintf(w, "  %s\n", s)
					}
				})
			})
		},
	}
}

func (rt *runtime) clearCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "clear LOAN_ID",
		Short: "Remove a loan's index, or one source document from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				var (
					removed int
					err     error
				)
				if source != "" {
					removed, err = b.Index.RemoveSource(cmd.Context(), args[0], source)
				} else {
					removed, err = b.Index.ClearLoan(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				out := map[string]any{"loan_id": args[0], "removed": removed}
				return rt.print(cmd, out, func(w io.Writer) {
					fmt.Fprintf(w, "removed %d chunks from loan %s\n", removed, args[0])
				})
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "remove only chunks from this source file")
	return cmd
}

func writeSources(w io.Writer, sources []domain.SourceSnippet) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "sources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  %s (%.2f): %s\n", s.Source, s.Score, preview(s.TextSnippet, 80))
	}
}
