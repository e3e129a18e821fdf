package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// DoctreeFormat is the doctree file format version this package reads.
// The front end and cratedoc must agree on it exactly.
const DoctreeFormat = 1

// doctreeFile is the on-disk shape of a serialized documentation tree.
type doctreeFile struct {
	Format          int                          `json:"format"`
	Crate           string                       `json:"crate"`
	Version         *string                      `json:"version"`
	IncludesPrivate bool                         `json:"includes_private"`
	Root            Item                         `json:"root"`
	Impls           map[ItemID][]Item            `json:"impls"`
	Implementors    map[ItemID][]Item            `json:"implementors"`
	Paths           map[ItemID]PathEntry         `json:"paths"`
	ExternalCrates  map[uint32]ExternalCrateInfo `json:"external_crates"`
}

// Load reads a doctree file from disk. Files ending in .zst are
// decompressed transparently.
func Load(path string) (*Crate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening doctree: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer r.Close()
		return Decode(r)
	}
	return Decode(f)
}

// Decode reads a doctree from an uncompressed JSON stream.
func Decode(r io.Reader) (*Crate, error) {
	var file doctreeFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding doctree JSON: %w", err)
	}
	if file.Format != DoctreeFormat {
		return nil, fmt.Errorf("doctree format %d not supported (want %d)", file.Format, DoctreeFormat)
	}
	if file.Root.Kind() != KindModule {
		return nil, fmt.Errorf("doctree root is %q, not a module", file.Root.Kind())
	}
	return &Crate{
		Name:            file.Crate,
		Version:         file.Version,
		IncludesPrivate: file.IncludesPrivate,
		Module:          file.Root,
		Impls:           file.Impls,
		Implementors:    file.Implementors,
		Paths:           file.Paths,
		ExternalCrates:  file.ExternalCrates,
	}, nil
}

// Save writes a doctree file to disk, compressing when the path ends in
// .zst. The inverse of Load; front ends emitting this format and tests
// use it to produce fixtures.
func Save(crate *Crate, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating doctree file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var zw *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		w = zw
	}

	file := doctreeFile{
		Format:          DoctreeFormat,
		Crate:           crate.Name,
		Version:         crate.Version,
		IncludesPrivate: crate.IncludesPrivate,
		Root:            crate.Module,
		Impls:           crate.Impls,
		Implementors:    crate.Implementors,
		Paths:           crate.Paths,
		ExternalCrates:  crate.ExternalCrates,
	}
	if err := json.NewEncoder(w).Encode(&file); err != nil {
		return fmt.Errorf("encoding doctree JSON: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("closing zstd writer: %w", err)
		}
	}
	return nil
}
