package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	domsite "github.com/openviglet/sitesearch/internal/domain/site"
	siterepo "github.com/openviglet/sitesearch/internal/repository/site"
)

func newSiteCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage site definitions in the configuration store",
	}

	cmd.AddCommand(newSitePutCmd(opts))
	cmd.AddCommand(newSiteGetCmd(opts))
	cmd.AddCommand(newSiteListCmd(opts))
	cmd.AddCommand(newSiteDeleteCmd(opts))

	return cmd
}

// withSites opens the configuration store for the duration of fn.
func withSites(ctx context.Context, opts *globalOptions, fn func(*siterepo.Repo) error) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(siterepo.New(store))
}

func newSitePutCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put -f <site.yaml>",
		Short: "Create or replace a site from a YAML definition",
		Example: `  sitesearch site put -f config/sites/example.yaml
  cat site.yaml | sitesearch site put -f -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readSite(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return withSites(cmd.Context(), opts, func(repo *siterepo.Repo) error {
				if err := repo.Put(cmd.Context(), s); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "site %s saved\n", s.Name())
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Site definition file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newSiteGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a site definition as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSites(cmd.Context(), opts, func(repo *siterepo.Repo) error {
				s, err := repo.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeSite(cmd.OutOrStdout(), s)
			})
		},
	}
}

func newSiteListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSites(cmd.Context(), opts, func(repo *siterepo.Repo) error {
				sites, err := repo.List(cmd.Context())
				if err != nil {
					return err
				}
				return printSites(cmd.OutOrStdout(), sites)
			})
		},
	}
}

func newSiteDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a site definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSites(cmd.Context(), opts, func(repo *siterepo.Repo) error {
				if err := repo.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "site %s deleted\n", args[0])
				return err
			})
		},
	}
}

// readSite decodes and validates a YAML site definition from a file or stdin.
func readSite(stdin io.Reader, file string) (*domsite.Site, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(filepath.Clean(file))
		if err != nil {
			return nil, fmt.Errorf("open site file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var def siterepo.Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse site file: %w", err)
	}
	return def.ToSite()
}

func writeSite(w io.Writer, s *domsite.Site) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(siterepo.FromSite(s)); err != nil {
		return fmt.Errorf("encode site: %w", err)
	}
	return enc.Close()
}

func printSites(w io.Writer, sites []*domsite.Site) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tCORE\tLOCALES\tFIELDS\tDESCRIPTION")
	for _, s := range sites {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			s.Name(), s.DefaultCore(), len(s.Locales()), s.Catalog().Len(), s.Description())
	}
	return tw.Flush()
}

