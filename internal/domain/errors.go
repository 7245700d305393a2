package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSiteNotFound signals an unknown site name.
	ErrSiteNotFound = errors.New("site not found")
	// ErrInvalidRequest signals a search request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidSite signals a site definition that failed validation.
	ErrInvalidSite = errors.New("invalid site definition")
	// ErrBackendUnavailable signals a search backend that could not be reached.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrSpellerUnavailable signals a spell-check provider failure.
	ErrSpellerUnavailable = errors.New("speller unavailable")
)
