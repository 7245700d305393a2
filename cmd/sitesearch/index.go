package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/config"
	"github.com/openviglet/sitesearch/internal/db"
	dbBleve "github.com/openviglet/sitesearch/internal/db/bleve"
	indexrepo "github.com/openviglet/sitesearch/internal/repository/index"
	siterepo "github.com/openviglet/sitesearch/internal/repository/site"
)

type indexOptions struct {
	site      string
	locale    string
	file      string
	batchSize int
	deleteIDs []string
}

func newIndexCmd(opts *globalOptions) *cobra.Command {
	ixo := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load documents into the embedded index",
		Long: `Create the embedded (bleve) cores of a site from its field catalog and load
documents into the core serving the given locale.

Documents are read as a JSON array of objects. Array values become
multi-valued fields. Solr cores are managed by Solr itself and are not
touched by this command.`,
		Example: `  sitesearch index --site docs -f docs.json
  sitesearch index --site docs --locale pt_BR -f docs-pt.json
  sitesearch index --site docs --delete 42 --delete 43`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, opts, ixo)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ixo.site, "site", "s", "", "Site name (required)")
	f.StringVarP(&ixo.locale, "locale", "l", "", "Locale whose core receives the documents")
	f.StringVarP(&ixo.file, "file", "f", "", "JSON documents file (- for stdin)")
	f.IntVar(&ixo.batchSize, "batch-size", indexrepo.DefaultBatchSize, "Documents per index batch")
	f.StringArrayVar(&ixo.deleteIDs, "delete", nil, "Delete the document with this id (repeatable)")
	_ = cmd.MarkFlagRequired("site")
	cmd.MarkFlagsOneRequired("file", "delete")
	cmd.MarkFlagsMutuallyExclusive("file", "delete")

	return cmd
}

func runIndex(cmd *cobra.Command, opts *globalOptions, ixo *indexOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Backend.Driver != config.BackendBleve {
		return fmt.Errorf("index requires the %s backend, configured backend is %s",
			config.BackendBleve, cfg.Backend.Driver)
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := siterepo.New(store).Get(ctx, ixo.site)
	if err != nil {
		return err
	}

	backend, err := dbBleve.New(dbBleve.Config{Path: cfg.Backend.Bleve.Path})
	if err != nil {
		return fmt.Errorf("open bleve backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close backend", zap.Error(err))
		}
	}()

	repo := indexrepo.New(backend).WithBatchSize(ixo.batchSize)
	out := cmd.OutOrStdout()

	if len(ixo.deleteIDs) > 0 {
		core, err := repo.Remove(ctx, s, ixo.locale, ixo.deleteIDs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "deleted %d documents from %s\n", len(ixo.deleteIDs), core)
		return err
	}

	created, err := repo.Prepare(ctx, s)
	if err != nil {
		return err
	}
	for _, c := range created {
		logger.Info("core created", zap.String("site", s.Name()), zap.String("core", c))
	}

	docs, err := readDocuments(cmd.InOrStdin(), ixo.file)
	if err != nil {
		return err
	}
	core, err := repo.Load(ctx, s, ixo.locale, docs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "indexed %d documents into %s\n", len(docs), core)
	return err
}

func readDocuments(stdin io.Reader, file string) ([]db.Document, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(filepath.Clean(file))
		if err != nil {
			return nil, fmt.Errorf("open documents file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return indexrepo.DecodeDocuments(r)
}
