package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Compression selects the document artifact codec. In the config file
// it is written either as a boolean (true means zstd) or as a codec
// name; "none" and false disable compression.
type Compression struct {
	Codec string `mapstructure:"codec"`
}

func (c Compression) Enabled() bool {
	return c.Codec != "" && c.Codec != "none"
}

// Extension returns the artifact file extension for this codec.
func (c Compression) Extension() string {
	if c.Enabled() {
		return ".json.zst"
	}
	return ".json"
}

type RenderConfig struct {
	ExternalImplementors bool `mapstructure:"external_implementors"`
	DocLinks             bool `mapstructure:"doc_links"`
}

type OutputConfig struct {
	Dir      string      `mapstructure:"dir"`
	Compress Compression `mapstructure:"compress"`
}

type ServeConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Output OutputConfig `mapstructure:"output"`
	Serve  ServeConfig  `mapstructure:"serve"`
	DB     DBConfig     `mapstructure:"db"`
}

// cacheBase returns the base cache directory for cratedoc.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/cratedoc as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "cratedoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "cratedoc")
	}
	return filepath.Join(os.TempDir(), "cratedoc")
}

// DBPath returns the path to the DuckDB database file.
func DBPath() string {
	return filepath.Join(cacheBase(), "index.db")
}

// DocsDir returns the default directory for built document artifacts.
func DocsDir() string {
	return filepath.Join(cacheBase(), "docs")
}

func InitializeViper() error {
	viper.SetConfigName("cratedoc")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "cratedoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "cratedoc"))
	}

	viper.SetDefault("render.doc_links", true)
	viper.SetDefault("output.dir", DocsDir())
	viper.SetDefault("output.compress", true)
	viper.SetDefault("serve.cache_size", 8)
	viper.SetDefault("db.path", DBPath())

	viper.SetEnvPrefix("CRATEDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func compressionHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Compression{}) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.Bool:
			if data.(bool) {
				return Compression{Codec: "zstd"}, nil
			}
			return Compression{}, nil
		case reflect.String:
			switch codec := data.(string); codec {
			case "", "false", "none":
				return Compression{}, nil
			case "true", "zstd":
				return Compression{Codec: "zstd"}, nil
			default:
				return nil, fmt.Errorf("unsupported compression codec %q", codec)
			}
		}
		return data, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: compressionHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
