package sitesearch

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	siterepo "github.com/openviglet/sitesearch/internal/repository/site"
)

// SiteInfo summarizes a stored site.
type SiteInfo struct {
	Name        string
	Description string
	DefaultCore string
	Locales     []string
}

// PutSiteYAML validates a YAML site definition and stores it, replacing any
// site with the same name.
func (c *Client) PutSiteYAML(ctx context.Context, data []byte) error {
	var def siterepo.Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return fmt.Errorf("sitesearch: parse site: %w", err)
	}
	s, err := def.ToSite()
	if err != nil {
		return fmt.Errorf("sitesearch: %w", err)
	}
	if err := c.sites.Put(ctx, s); err != nil {
		return fmt.Errorf("put site %s: %w", s.Name(), err)
	}
	if c.cached != nil {
		c.cached.Invalidate(s.Name())
	}
	return nil
}

// SiteYAML returns the stored definition of a site as YAML.
func (c *Client) SiteYAML(ctx context.Context, name string) ([]byte, error) {
	s, err := c.sites.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get site %s: %w", name, err)
	}
	out, err := yaml.Marshal(siterepo.FromSite(s))
	if err != nil {
		return nil, fmt.Errorf("encode site %s: %w", name, err)
	}
	return out, nil
}

// Sites lists the stored sites.
func (c *Client) Sites(ctx context.Context) ([]SiteInfo, error) {
	sites, err := c.sites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	out := make([]SiteInfo, len(sites))
	for i, s := range sites {
		info := SiteInfo{Name: s.Name(), Description: s.Description(), DefaultCore: s.DefaultCore()}
		for _, l := range s.Locales() {
			info.Locales = append(info.Locales, l.Tag)
		}
		out[i] = info
	}
	return out, nil
}

// DeleteSite removes a stored site.
func (c *Client) DeleteSite(ctx context.Context, name string) error {
	if err := c.sites.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete site %s: %w", name, err)
	}
	if c.cached != nil {
		c.cached.Invalidate(name)
	}
	return nil
}
