package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"cratedoc/internal/config"
	"cratedoc/internal/db"
	"cratedoc/internal/docjson"
)

var exportCmd = &cobra.Command{
	Use:   "export <artifact ...>",
	Short: "Export document artifacts into the index database",
	Long: `Load built document artifacts and store their items, paths and
relations in the index database queried by the MCP server. Re-exporting
a crate version replaces its previous rows.`,
	Example: `  cratedoc export docs/serde@1.0.200.json.zst
  cratedoc export docs/*.json.zst`,
	Args: cobra.MinimumNArgs(1),
	Run:  runExport,
}

func runExport(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	database, err := db.New(cfg.DB.Path)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer database.Close()

	for _, path := range args {
		doc, err := docjson.ReadFile(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		root, ok := doc.Index[doc.Root]
		if !ok || root.Name == nil {
			log.Fatalf("%s: document root carries no crate name", path)
		}
		crate, err := database.StoreDocument(*root.Name, doc)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		count, err := database.CountItems(crate.ID)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		fmt.Printf("  %s@%s: %d items exported\n", crate.Name, crate.Version, count)
	}
}
