// Package cli implements the glc command line: local ingestion, questions
// against indexed loans, rule assessment and the MCP tool server.
package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

// Backend holds the model-backed services. Opening one probes the embedder
// and the local stores, so commands that only run rules never open it.
type Backend struct {
	Ingest     ports.LoanIngestor
	Jobs       ports.JobReader
	Index      ports.IndexService
	Extraction ports.ExtractionService
	Assessment ports.AssessmentService
	Close      func() error
}

// App is what NewRootCommand needs from the composition root.
type App struct {
	Config     config.Config
	Open       func(ctx context.Context, cfg config.Config) (*Backend, error)
	Assessment func(cfg config.Config) (ports.AssessmentService, error)
}

type runtime struct {
	app     App
	cfg     config.Config
	dataDir string
	jsonOut bool
	noProg  bool
}

func NewRootCommand(app App) *cobra.Command {
	rt := &runtime{app: app, cfg: app.Config}

	root := &cobra.Command{
		Use:           "glc",
		Short:         "Green loan compliance toolkit",
		Long:          `Index loan documents, answer questions from them, and assess green loan applications against GLP, DNSH and carbon lock-in rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			rt.applyDataDir()
		},
	}
	root.PersistentFlags().StringVar(&rt.dataDir, "data-dir", "", "store jobs, documents and vectors under this directory")
	root.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVar(&rt.noProg, "no-progress", false, "disable progress bars")

	root.AddCommand(
		rt.chunkCmd(),
		rt.ingestCmd(),
		rt.statusCmd(),
		rt.askCmd(),
		rt.verifyCmd(),
		rt.extractCmd(),
		rt.assessCmd(),
		rt.sptCmd(),
		rt.statsCmd(),
		rt.clearCmd(),
		rt.mcpCmd(),
	)
	return root
}

func (rt *runtime) applyDataDir() {
	if rt.dataDir == "" {
		return
	}
	rt.cfg.SQLiteDir = rt.dataDir
	rt.cfg.StoragePath = filepath.Join(rt.dataDir, "storage")
	rt.cfg.VectorDir = filepath.Join(rt.dataDir, "vectors")
}

// withBackend opens the backend for the duration of fn.
func (rt *runtime) withBackend(ctx context.Context, fn func(*Backend) error) error {
	if rt.app.Open == nil {
		return errors.New("backend is not configured")
	}
	b, err := rt.app.Open(ctx, rt.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if b.Close != nil {
			_ = b.Close()
		}
	}()
	return fn(b)
}

func (rt *runtime) assessment() (ports.AssessmentService, error) {
	if rt.app.Assessment == nil {
		return nil, errors.New("assessment engine is not configured")
	}
	return rt.app.Assessment(rt.cfg)
}
