package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where an OpenAPI document lives.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL validates raw as an absolute URL.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource picks a URL source for http(s) locations and a file source
// otherwise.
func ParseSource(location string) (Source, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("openapi: empty source location")
	}
	return SourceFromFile(location), nil
}
