package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "cratedoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "cratedoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	got := cacheBase()
	// Should use os.TempDir() when HOME is unset
	if !strings.Contains(got, "cratedoc") {
		t.Errorf("expected cratedoc in path, got %q", got)
	}
}

func decodeOutput(t *testing.T, settings map[string]interface{}) OutputConfig {
	t.Helper()
	var out OutputConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: compressionHookFunc(),
		Result:     &out,
	})
	if err != nil {
		t.Fatalf("creating decoder: %v", err)
	}
	if err := decoder.Decode(settings); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	return out
}

func TestCompressionHook_Bool(t *testing.T) {
	out := decodeOutput(t, map[string]interface{}{"dir": "/tmp/docs", "compress": true})
	if out.Compress.Codec != "zstd" {
		t.Errorf("codec = %q, want zstd", out.Compress.Codec)
	}

	out = decodeOutput(t, map[string]interface{}{"compress": false})
	if out.Compress.Enabled() {
		t.Error("compress=false should disable compression")
	}
}

func TestCompressionHook_String(t *testing.T) {
	out := decodeOutput(t, map[string]interface{}{"compress": "zstd"})
	if !out.Compress.Enabled() {
		t.Error("compress=zstd should enable compression")
	}

	out = decodeOutput(t, map[string]interface{}{"compress": "none"})
	if out.Compress.Enabled() {
		t.Error("compress=none should disable compression")
	}
}

func TestCompressionHook_UnknownCodec(t *testing.T) {
	var out OutputConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: compressionHookFunc(),
		Result:     &out,
	})
	if err != nil {
		t.Fatalf("creating decoder: %v", err)
	}
	err = decoder.Decode(map[string]interface{}{"compress": "lz4"})
	if err == nil || !strings.Contains(err.Error(), "lz4") {
		t.Errorf("err = %v, want unsupported codec", err)
	}
}

func TestCompressionExtension(t *testing.T) {
	if got := (Compression{Codec: "zstd"}).Extension(); got != ".json.zst" {
		t.Errorf("Extension = %q", got)
	}
	if got := (Compression{}).Extension(); got != ".json" {
		t.Errorf("Extension = %q", got)
	}
}
