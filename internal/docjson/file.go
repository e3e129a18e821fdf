package docjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ArtifactPath returns the conventional file path for a crate's
// document artifact: <dir>/<name>@<version><ext>.
func ArtifactPath(dir, name, version, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s@%s%s", name, version, ext))
}

// WriteFile serializes the document to path, compressing when the path
// ends in .zst.
func WriteFile(doc *Crate, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating document file: %w", err)
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

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("closing zstd writer: %w", err)
		}
	}
	return f.Close()
}

// ReadFile loads a document artifact written by WriteFile.
func ReadFile(path string) (*Crate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer r.Close()
		return Read(r)
	}
	return Read(f)
}

// Read decodes a document from an uncompressed JSON stream and checks
// its format version. Documents from other schema versions are
// rejected rather than half-understood.
func Read(r io.Reader) (*Crate, error) {
	var doc Crate
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if doc.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("document format %d not supported (want %d)", doc.FormatVersion, FormatVersion)
	}
	return &doc, nil
}
