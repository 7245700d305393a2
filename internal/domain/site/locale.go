package site

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale binds a language tag to the backend core holding its documents.
type Locale struct {
	Tag  string
	Core string
}

// NormalizeLocale canonicalizes a locale string such as "pt_br" to "pt-BR".
func NormalizeLocale(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag.String(), nil
}

type localeMatcher struct {
	matcher language.Matcher
	locales []Locale
}

func newLocaleMatcher(locales []Locale) (*localeMatcher, error) {
	if len(locales) == 0 {
		return nil, nil
	}
	tags := make([]language.Tag, 0, len(locales))
	for i, l := range locales {
		tag, err := language.Parse(strings.ReplaceAll(l.Tag, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("locale %d: %w", i, err)
		}
		if l.Core == "" {
			return nil, fmt.Errorf("locale %s: core is required", l.Tag)
		}
		tags = append(tags, tag)
	}
	return &localeMatcher{matcher: language.NewMatcher(tags), locales: locales}, nil
}

func (m *localeMatcher) match(locale string) (Locale, bool) {
	if m == nil || locale == "" {
		return Locale{}, false
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return Locale{}, false
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No {
		return Locale{}, false
	}
	return m.locales[idx], true
}
