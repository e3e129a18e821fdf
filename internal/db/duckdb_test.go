package db

import (
	"path/filepath"
	"testing"

	"cratedoc/internal/docjson"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func sampleDoc() *docjson.Crate {
	return &docjson.Crate{
		Root:         "0:0",
		CrateVersion: strPtr("1.0.0"),
		Index: map[docjson.ID]docjson.Item{
			"0:0": {ID: "0:0", Name: strPtr("mini"), Visibility: docjson.Visibility{Level: "public"},
				Kind: "module", Inner: docjson.Module{IsCrate: true, Items: []docjson.ID{"0:1", "0:2"}}},
			"0:1": {ID: "0:1", Name: strPtr("Widget"), Visibility: docjson.Visibility{Level: "public"},
				Docs: "A widget.", Kind: "struct",
				Inner: docjson.Struct{StructType: "plain", Fields: []docjson.ID{}, Impls: []docjson.ID{"0:3"}}},
			"0:2": {ID: "0:2", Name: strPtr("Draw"), Visibility: docjson.Visibility{Level: "public"},
				Kind:  "trait",
				Inner: docjson.Trait{Items: []docjson.ID{}, Implementors: []docjson.ID{"0:3"}}},
			"0:3": {ID: "0:3", Visibility: docjson.Visibility{Level: "default"},
				Kind:  "impl",
				Inner: docjson.Impl{Items: []docjson.ID{}, ProvidedMethods: []string{}, For: docjson.Type{Kind: docjson.TypeResolvedPath, Name: "Widget", ID: "0:1"}}},
		},
		Paths: map[docjson.ID]docjson.ItemSummary{
			"0:0": {CrateID: 0, Path: []string{"mini"}, Kind: "module"},
			"0:1": {CrateID: 0, Path: []string{"mini", "Widget"}, Kind: "struct"},
			"0:2": {CrateID: 0, Path: []string{"mini", "Draw"}, Kind: "trait"},
			"0:3": {CrateID: 0, Path: []string{"mini", "Widget", "impl"}, Kind: "impl"},
		},
		ExternalCrates: map[uint32]docjson.ExternalCrate{},
		FormatVersion:  docjson.FormatVersion,
	}
}

func TestStoreDocument(t *testing.T) {
	db := openTestDB(t)

	crate, err := db.StoreDocument("mini", sampleDoc())
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}
	if crate.Name != "mini" || crate.Version != "1.0.0" || crate.RootID != "0:0" {
		t.Errorf("crate = %+v", crate)
	}

	count, err := db.CountItems(crate.ID)
	if err != nil {
		t.Fatalf("CountItems: %v", err)
	}
	if count != 4 {
		t.Errorf("CountItems = %d, want 4", count)
	}

	widget, err := db.GetItemByPath(crate.ID, "mini::Widget")
	if err != nil {
		t.Fatalf("GetItemByPath: %v", err)
	}
	if widget == nil || widget.Kind != "struct" || widget.Docs != "A widget." {
		t.Errorf("widget = %+v", widget)
	}

	impls, err := db.ListRelations(crate.ID, "0:1", RelationImpl)
	if err != nil {
		t.Fatalf("ListRelations: %v", err)
	}
	if len(impls) != 1 || impls[0] != "0:3" {
		t.Errorf("impls = %v, want [0:3]", impls)
	}

	implementors, err := db.ListRelations(crate.ID, "0:2", RelationImplementor)
	if err != nil {
		t.Fatalf("ListRelations: %v", err)
	}
	if len(implementors) != 1 || implementors[0] != "0:3" {
		t.Errorf("implementors = %v, want [0:3]", implementors)
	}
}

func TestStoreDocumentReplaces(t *testing.T) {
	db := openTestDB(t)

	first, err := db.StoreDocument("mini", sampleDoc())
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}
	second, err := db.StoreDocument("mini", sampleDoc())
	if err != nil {
		t.Fatalf("StoreDocument again: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("crate ID changed across re-export: %d -> %d", first.ID, second.ID)
	}
	count, err := db.CountItems(second.ID)
	if err != nil {
		t.Fatalf("CountItems: %v", err)
	}
	if count != 4 {
		t.Errorf("CountItems after re-export = %d, want 4", count)
	}
}

func TestSearchItems(t *testing.T) {
	db := openTestDB(t)

	crate, err := db.StoreDocument("mini", sampleDoc())
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}

	hits, err := db.SearchItems("Widget", []int{crate.ID}, nil, 10)
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2 (struct and its impl)", len(hits))
	}

	hits, err = db.SearchItems("Widget", []int{crate.ID}, []string{"struct"}, 10)
	if err != nil {
		t.Fatalf("SearchItems with kind: %v", err)
	}
	if len(hits) != 1 || hits[0].ItemID != "0:1" {
		t.Errorf("hits = %+v, want just the struct", hits)
	}

	hits, err = db.SearchItems("nothing_matches", nil, nil, 10)
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}

func TestGetCrateMissing(t *testing.T) {
	db := openTestDB(t)

	crate, err := db.GetCrate("ghost", "1.0.0")
	if err != nil {
		t.Fatalf("GetCrate: %v", err)
	}
	if crate != nil {
		t.Errorf("crate = %+v, want nil", crate)
	}

	item, err := db.GetItem(1, "0:1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Errorf("item = %+v, want nil", item)
	}
}

func TestGetPath(t *testing.T) {
	db := openTestDB(t)

	crate, err := db.StoreDocument("mini", sampleDoc())
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}

	path, ok := db.GetPath(crate.ID, "0:2")
	if !ok || path != "mini::Draw" {
		t.Errorf("GetPath = %q, %v", path, ok)
	}
	if _, ok := db.GetPath(crate.ID, "9:9"); ok {
		t.Error("expected no path for unknown ID")
	}
}
