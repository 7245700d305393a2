package sitesearch

import (
	"context"
	"errors"
	"strings"
	"testing"

	dbBleve "github.com/openviglet/sitesearch/internal/db/bleve"
	dbSQLite "github.com/openviglet/sitesearch/internal/db/sqlite"
	"github.com/openviglet/sitesearch/internal/domain"
)

func TestNew_NoBackend(t *testing.T) {
	_, err := New(WithSQLite(dbSQLite.MemoryPath))
	if err == nil || !strings.Contains(err.Error(), "backend required") {
		t.Fatalf("expected backend required error, got %v", err)
	}
}

func TestCreateStore_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  clientConfig
		want string
	}{
		{"none", clientConfig{}, "store required"},
		{"unknown", clientConfig{store: "etcd"}, "unknown store"},
		{"redis without addrs", clientConfig{store: storeRedis}, "address required"},
		{"sqlite without path", clientConfig{store: storeSQLite}, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := createStore(&tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCreateBackend_Unknown(t *testing.T) {
	_, err := createBackend(&clientConfig{backend: "elastic"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithValkey("a:6379", "b:6379"),
		WithPassword("secret"),
		WithSolr("http://solr:8983/solr"),
		WithSolrAuth("u", "p"),
		WithSpeller("key", "", ""),
	} {
		o(cfg)
	}
	if cfg.store != storeValkey || len(cfg.addrs) != 2 || cfg.password != "secret" {
		t.Errorf("store options not applied: %+v", cfg)
	}
	if cfg.backend != backendSolr || cfg.solrURL != "http://solr:8983/solr" || cfg.solrUser != "u" {
		t.Errorf("backend options not applied: %+v", cfg)
	}
	if cfg.spellerKey != "key" {
		t.Errorf("speller key = %q", cfg.spellerKey)
	}
}

const docsSite = `name: docs
default_core: docs_en
locales:
  - tag: pt_BR
    core: docs_pt
fields:
  - name: title
    type: text
`

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := dbSQLite.NewStore(dbSQLite.Config{Path: dbSQLite.MemoryPath})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	backend, err := dbBleve.New(dbBleve.Config{Path: t.TempDir()})
	if err != nil {
		store.Close()
		t.Fatalf("bleve: %v", err)
	}
	c := wireClient(store, backend, &clientConfig{})
	t.Cleanup(c.Close)
	return c
}

func TestClient_Sites(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.PutSiteYAML(ctx, []byte(docsSite)); err != nil {
		t.Fatalf("put: %v", err)
	}

	sites, err := c.Sites(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sites) != 1 || sites[0].Name != "docs" || sites[0].DefaultCore != "docs_en" {
		t.Fatalf("sites = %+v", sites)
	}
	if len(sites[0].Locales) != 1 || sites[0].Locales[0] != "pt_BR" {
		t.Errorf("locales = %v", sites[0].Locales)
	}

	out, err := c.SiteYAML(ctx, "docs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(string(out), "name: docs") {
		t.Errorf("yaml missing name:\n%s", out)
	}

	if err := c.DeleteSite(ctx, "docs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.SiteYAML(ctx, "docs"); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("after delete err = %v, want ErrSiteNotFound", err)
	}
}

func TestClient_PutSiteYAML_Invalid(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.PutSiteYAML(ctx, []byte("name: docs\nunknown: true\n")); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := c.PutSiteYAML(ctx, []byte("name: \"bad name\"\n")); err == nil {
		t.Error("expected error for invalid site name")
	}
}
