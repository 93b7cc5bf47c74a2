package catalog

import (
	_ "embed"
	"sync"
)

//go:embed data/default.json
var defaultJSON []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Decode(defaultJSON)
	})
	return defaultCatalog, defaultErr
}

// DefaultJSON returns the raw built-in catalog document.
func DefaultJSON() []byte {
	return append([]byte(nil), defaultJSON...)
}
