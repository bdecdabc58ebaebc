package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/extractor/document"
)

type ingestOptions struct {
	include    []string
	exclude    []string
	docType    string
	fieldsFile string
}

func (rt *runtime) ingestCmd() *cobra.Command {
	var opts ingestOptions
	cmd := &cobra.Command{
		Use:   "ingest LOAN_ID PATH...",
		Short: "Upload documents for a loan, index them and assess the loan",
		Long: `Uploads every supported file found under the given paths, then runs the
ingestion job inline: text extraction, chunk indexing, field extraction and
the compliance assessment. Directories are walked recursively and filtered
with --include/--exclude glob patterns (doublestar syntax, e.g. "**/*.pdf").`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args[1:], opts.include, opts.exclude)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported files found")
			}
			fields, err := loadFields(opts.fieldsFile)
			if err != nil {
				return err
			}
			return rt.withBackend(cmd.Context(), func(b *Backend) error {
				job, err := rt.ingest(cmd.Context(), b, args[0], files, opts.docType, fields)
				if err != nil {
					return err
				}
				return rt.print(cmd, job, func(w io.Writer) { writeJob(w, job) })
			})
		},
	}
	cmd.Flags().StringArrayVar(&opts.include, "include", nil, "glob of files to include (repeatable)")
	cmd.Flags().StringArrayVar(&opts.exclude, "exclude", nil, "glob of files to exclude (repeatable)")
	cmd.Flags().StringVar(&opts.docType, "doc-type", "general", "document type for the uploaded files")
	cmd.Flags().StringVar(&opts.fieldsFile, "fields", "", "YAML or JSON file with the loan application fields")
	return cmd
}

func (rt *runtime) ingest(
	ctx context.Context,
	b *Backend,
	loanID string,
	files []string,
	docType string,
	fields domain.ProjectFields,
) (*domain.IngestionJob, error) {
	bar := newProgress(!rt.noProg, len(files), "uploading")
	for _, path := range files {
		if err := upload(ctx, b, loanID, path, docType); err != nil {
			bar.Finish()
			return nil, err
		}
		bar.Increment()
	}
	bar.Finish()
	slog.Info("ingestion_uploaded", "loan_id", loanID, "files", len(files))

	job, err := b.Ingest.Submit(ctx, loanID, fields)
	if err != nil {
		return nil, err
	}
	return b.Jobs.GetByID(ctx, job.ID)
}

func upload(ctx context.Context, b *Backend, loanID, path, docType string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := b.Ingest.Upload(ctx, loanID, filepath.Base(path), docType, f); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

// collectFiles expands paths into supported files. Patterns match the path
// relative to the walked directory, or the base name.
func collectFiles(paths, include, exclude []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(path, rel string) {
		if seen[path] || !document.Supported(path) || !selected(rel, include, exclude) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root, filepath.Base(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			add(path, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func selected(rel string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if globMatch(pattern, rel) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if globMatch(pattern, rel) {
			return true
		}
	}
	return false
}

func globMatch(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, filepath.Base(rel))
	return ok
}

func loadFields(path string) (domain.ProjectFields, error) {
	var fields domain.ProjectFields
	if path == "" {
		return fields, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fields, fmt.Errorf("read fields file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return fields, fmt.Errorf("parse fields file: %w", err)
	}
	return fields, nil
}

func writeJob(w io.Writer, job *domain.IngestionJob) {
	fmt.Fprintf(w, "job %s (%s): %s\n", job.ID, job.LoanID, job.Status)
	if job.Error != "" {
		fmt.Fprintf(w, "error: %s\n", job.Error)
	}
	if s := job.Summary; s != nil {
		tw := newTable(w)
		fmt.Fprintf(tw, "documents\t%d processed, %d skipped\n", s.DocumentsProcessed, job.DocumentsSkipped)
		fmt.Fprintf(tw, "chunks\t%d\n", s.ChunksCreated)
		fmt.Fprintf(tw, "fields extracted\t%d\n", s.FieldsExtracted)
		fmt.Fprintf(tw, "ESG score\t%.1f (%s)\n", s.ESGScore, s.Grade)
		fmt.Fprintf(tw, "GLP eligible\t%s (%s)\n", yesNo(s.GLPEligible), s.GLPCategory)
		fmt.Fprintf(tw, "DNSH pass\t%s\n", yesNo(s.DNSHPass))
		fmt.Fprintf(tw, "carbon lock-in\t%s\n", s.CarbonRisk)
		_ = tw.Flush()
	}
}
