package docjson

import (
	"strings"
	"testing"
)

func validDoc() *Crate {
	return &Crate{
		Root:         "0:0",
		CrateVersion: strPtr("0.1.0"),
		Index: map[ID]Item{
			"0:0": {ID: "0:0", Name: strPtr("mini"), Visibility: Visibility{Level: "public"},
				Kind: "module", Inner: Module{IsCrate: true, Items: []ID{"0:1"}}},
			"0:1": {ID: "0:1", Name: strPtr("Widget"), Visibility: Visibility{Level: "public"},
				Kind: "struct", Inner: Struct{StructType: "plain", Fields: []ID{}, Impls: []ID{}}},
		},
		Paths: map[ID]ItemSummary{
			"0:0": {CrateID: 0, Path: []string{"mini"}, Kind: "module"},
			"0:1": {CrateID: 0, Path: []string{"mini", "Widget"}, Kind: "struct"},
		},
		ExternalCrates: map[uint32]ExternalCrate{},
		FormatVersion:  FormatVersion,
	}
}

func TestValidateAcceptsConsistentDocument(t *testing.T) {
	t.Parallel()

	if err := validDoc().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateMissingRoot(t *testing.T) {
	t.Parallel()

	doc := validDoc()
	doc.Root = "0:99"
	err := doc.Validate()
	if err == nil || !strings.Contains(err.Error(), "root 0:99") {
		t.Errorf("err = %v, want missing root", err)
	}
}

func TestValidateDanglingLocalReference(t *testing.T) {
	t.Parallel()

	doc := validDoc()
	root := doc.Index["0:0"]
	root.Inner = Module{IsCrate: true, Items: []ID{"0:1", "0:9"}}
	doc.Index["0:0"] = root

	err := doc.Validate()
	if err == nil || !strings.Contains(err.Error(), "references local 0:9") {
		t.Errorf("err = %v, want dangling local reference", err)
	}
}

func TestValidateMissingPathEntry(t *testing.T) {
	t.Parallel()

	doc := validDoc()
	delete(doc.Paths, "0:1")

	err := doc.Validate()
	if err == nil || !strings.Contains(err.Error(), "no path entry") {
		t.Errorf("err = %v, want missing path entry", err)
	}
}

func TestValidateExternalReferenceNeedsPathOnly(t *testing.T) {
	t.Parallel()

	// An external implementor may stay out of the index as long as the
	// path table covers it.
	doc := validDoc()
	trait := Item{ID: "0:2", Name: strPtr("Draw"), Visibility: Visibility{Level: "public"},
		Kind: "trait", Inner: Trait{Items: []ID{}, Implementors: []ID{"3:7"}}}
	doc.Index["0:2"] = trait
	doc.Paths["0:2"] = ItemSummary{CrateID: 0, Path: []string{"mini", "Draw"}, Kind: "trait"}

	if err := doc.Validate(); err == nil || !strings.Contains(err.Error(), "3:7") {
		t.Errorf("err = %v, want missing path entry for 3:7", err)
	}

	doc.Paths["3:7"] = ItemSummary{CrateID: 3, Path: []string{"other", "Thing"}, Kind: "struct"}
	if err := doc.Validate(); err != nil {
		t.Errorf("Validate after adding path: %v", err)
	}
}
