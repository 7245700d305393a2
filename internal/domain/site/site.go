package site

import (
	"fmt"
	"regexp"

	"github.com/openviglet/sitesearch/internal/domain/search/boost"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Params are the inputs to New.
type Params struct {
	Name        string
	Description string
	DefaultCore string
	Locales     []Locale
	Search      SearchConfig
	Fields      []field.Definition
	Rankings    []boost.Expression
	Targeting   targeting.Rules
}

// Site is a search tenant: its configuration, fields and rules (immutable).
type Site struct {
	name        string
	description string
	defaultCore string
	locales     []Locale
	matcher     *localeMatcher
	search      SearchConfig
	catalog     field.Catalog
	rankings    []boost.Expression
	targeting   targeting.Rules
}

// New validates and creates a Site.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. The default core falls back to the name.
func New(p Params) (*Site, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("site name is required")
	}
	if len(p.Name) > 64 {
		return nil, fmt.Errorf("site name too long (max 64)")
	}
	if !nameRegex.MatchString(p.Name) {
		return nil, fmt.Errorf("site name must be alphanumeric with underscores and hyphens")
	}
	search, err := p.Search.Normalize()
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", p.Name, err)
	}
	catalog, err := field.NewCatalog(p.Fields)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", p.Name, err)
	}
	matcher, err := newLocaleMatcher(p.Locales)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", p.Name, err)
	}
	core := p.DefaultCore
	if core == "" {
		core = p.Name
	}
	rankings := make([]boost.Expression, len(p.Rankings))
	copy(rankings, p.Rankings)
	locales := make([]Locale, len(p.Locales))
	copy(locales, p.Locales)

	return &Site{
		name:        p.Name,
		description: p.Description,
		defaultCore: core,
		locales:     locales,
		matcher:     matcher,
		search:      search,
		catalog:     catalog,
		rankings:    rankings,
		targeting:   p.Targeting,
	}, nil
}

// Name returns the site name.
func (s *Site) Name() string { return s.name }

// Description returns the free-form site description.
func (s *Site) Description() string { return s.description }

// DefaultCore returns the core used when no locale matches.
func (s *Site) DefaultCore() string { return s.defaultCore }

// Search returns the site-wide search configuration.
func (s *Site) Search() SearchConfig { return s.search }

// Catalog returns the field catalog.
func (s *Site) Catalog() field.Catalog { return s.catalog }

// Rankings returns the ranking expressions.
func (s *Site) Rankings() []boost.Expression { return s.rankings }

// Targeting returns the site-level targeting rules.
func (s *Site) Targeting() targeting.Rules { return s.targeting }

// Locales returns the configured locales.
func (s *Site) Locales() []Locale {
	out := make([]Locale, len(s.locales))
	copy(out, s.locales)
	return out
}

// ResolveCore picks the backend core for a requested locale. It returns the
// matched locale tag, or an empty tag when the default core is used.
func (s *Site) ResolveCore(locale string) (core, tag string) {
	if l, ok := s.matcher.match(locale); ok {
		return l.Core, l.Tag
	}
	return s.defaultCore, ""
}
