package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cratedoc/internal/config"
	"cratedoc/internal/db"
	"cratedoc/internal/docjson"
	"cratedoc/internal/model"
)

var buildCmd = &cobra.Command{
	Use:   "build <doctree.json[.zst] ...>",
	Short: "Build document artifacts from doctree files",
	Long: `Render traversed documentation trees into flat, cross-referenced
documents and write them as artifacts. Inputs are processed concurrently.`,
	Example: `  cratedoc build serde.doctree.json
  cratedoc build --check build/*.doctree.json.zst
  cratedoc build --db tokio.doctree.json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runBuild,
}

var (
	buildCheck    bool
	buildOut      string
	buildCompress string
	buildDB       bool
)

func init() {
	buildCmd.Flags().BoolVar(&buildCheck, "check", false, "render and validate only, write nothing")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output directory (default from config)")
	buildCmd.Flags().StringVar(&buildCompress, "compress", "", "artifact compression: zstd or none (default from config)")
	buildCmd.Flags().BoolVar(&buildDB, "db", false, "also export built documents to the index database")
}

func runBuild(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	outDir := cfg.Output.Dir
	if buildOut != "" {
		outDir = buildOut
	}
	compress := cfg.Output.Compress
	switch buildCompress {
	case "":
	case "zstd", "none":
		compress = config.Compression{Codec: buildCompress}
	default:
		log.Fatalf("unsupported compression codec %q", buildCompress)
	}

	opts := docjson.Options{
		IncludeExternalImplementors: cfg.Render.ExternalImplementors,
		SkipDocLinks:                !cfg.Render.DocLinks,
	}

	if !buildCheck {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}
	}

	var database *db.DB
	var dbMu sync.Mutex
	if buildDB && !buildCheck {
		database, err = db.New(cfg.DB.Path)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer database.Close()
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for _, path := range args {
		g.Go(func() error {
			crate, err := model.Load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			doc, err := docjson.RenderCrate(crate, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := doc.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if buildCheck {
				fmt.Printf("  %s: ok (%d items)\n", path, len(doc.Index))
				return nil
			}

			version := "unknown"
			if doc.CrateVersion != nil {
				version = *doc.CrateVersion
			}
			out := docjson.ArtifactPath(outDir, crate.Name, version, compress.Extension())
			if err := docjson.WriteFile(doc, out); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Printf("  %s -> %s (%d items)\n", path, out, len(doc.Index))

			if database != nil {
				// StoreDocument reads back sequence values, so
				// exports cannot overlap.
				dbMu.Lock()
				defer dbMu.Unlock()
				if _, err := database.StoreDocument(crate.Name, doc); err != nil {
					return fmt.Errorf("%s: exporting: %w", path, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("build failed: %v", err)
	}
}
