package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cratedoc/internal/docjson"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact> [path]",
	Short: "Summarize a document artifact or print one item",
	Example: `  cratedoc inspect serde@1.0.200.json.zst
  cratedoc inspect serde@1.0.200.json.zst serde::de::Deserialize
  cratedoc inspect --json serde@1.0.200.json.zst`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runInspect,
}

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output summary as JSON")
}

func runInspect(cmd *cobra.Command, args []string) {
	doc, err := docjson.ReadFile(args[0])
	if err != nil {
		log.Fatalf("reading artifact: %v", err)
	}

	if len(args) == 2 {
		inspectItem(doc, args[0], args[1])
		return
	}

	name := "?"
	if root, ok := doc.Index[doc.Root]; ok && root.Name != nil {
		name = *root.Name
	}
	version := "unknown"
	if doc.CrateVersion != nil {
		version = *doc.CrateVersion
	}

	counts := make(map[string]int)
	for _, item := range doc.Index {
		counts[item.Kind]++
	}

	if inspectJSON {
		out, err := json.MarshalIndent(struct {
			Name           string         `json:"name"`
			Version        string         `json:"version"`
			FormatVersion  int            `json:"format_version"`
			Items          int            `json:"items"`
			ExternalCrates int            `json:"external_crates"`
			Kinds          map[string]int `json:"kinds"`
		}{name, version, doc.FormatVersion, len(doc.Index), len(doc.ExternalCrates), counts}, "", "  ")
		if err != nil {
			log.Fatalf("encoding summary: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("%s@%s (format %d)\n", name, version, doc.FormatVersion)
	fmt.Printf("  items: %d\n", len(doc.Index))
	fmt.Printf("  external crates: %d\n", len(doc.ExternalCrates))

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %6d %s\n", counts[k], k)
	}
}

func inspectItem(doc *docjson.Crate, artifact, target string) {
	for id, summary := range doc.Paths {
		if strings.Join(summary.Path, "::") != target {
			continue
		}
		item, ok := doc.Index[id]
		if !ok {
			continue
		}
		out, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			log.Fatalf("encoding item: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	log.Fatalf("no item %s in %s", target, artifact)
}
