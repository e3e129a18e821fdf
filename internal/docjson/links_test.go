package docjson

import (
	"testing"

	"cratedoc/internal/model"
)

func linkCrate() *model.Crate {
	return &model.Crate{
		Name: "mini",
		Paths: map[model.ItemID]model.PathEntry{
			lid(1):     {Crate: 0, Path: []string{"mini", "Widget"}, Kind: model.KindStruct},
			lid(2):     {Crate: 0, Path: []string{"mini", "util", "helper"}, Kind: model.KindFunction},
			lid(3):     {Crate: 0, Path: []string{"mini", "util", "Widget"}, Kind: model.KindStruct},
			xid(2, 10): {Crate: 2, Path: []string{"std", "vec", "Vec"}, Kind: model.KindStruct},
		},
	}
}

func TestResolveDocLinks(t *testing.T) {
	t.Parallel()

	ix := newLinkIndex(linkCrate())
	docs := "See [util::Widget] and [crate::Widget], or call [`helper`].\n" +
		"External types like [Vec] resolve through the path table too.\n" +
		"But [nothing::here] and [citation needed] do not."

	links := ix.resolve(docs)
	want := map[string]ID{
		"util::Widget":  "0:3",
		"crate::Widget": "0:1",
		"helper":        "0:2",
		"Vec":           "2:10",
	}
	if len(links) != len(want) {
		t.Fatalf("resolve = %v, want %v", links, want)
	}
	for target, id := range want {
		if links[target] != id {
			t.Errorf("links[%q] = %s, want %s", target, links[target], id)
		}
	}
}

func TestResolveAmbiguousBareName(t *testing.T) {
	t.Parallel()

	// Two items share the bare name Widget; only qualified references
	// resolve.
	ix := newLinkIndex(linkCrate())
	links := ix.resolve("Both [Widget] flavors exist, see [mini::Widget].")

	if _, ok := links["Widget"]; ok {
		t.Error("ambiguous bare name should not resolve")
	}
	if links["mini::Widget"] != "0:1" {
		t.Errorf("links[mini::Widget] = %s, want 0:1", links["mini::Widget"])
	}
}

func TestResolveInlineLinkDestination(t *testing.T) {
	t.Parallel()

	ix := newLinkIndex(linkCrate())
	links := ix.resolve("Use [the helper](util::helper) for this.")

	if links["util::helper"] != "0:2" {
		t.Errorf("links = %v, want util::helper -> 0:2", links)
	}
	if _, ok := links["the helper"]; ok {
		t.Error("link text must not be treated as a target")
	}
}

func TestResolveNoLinks(t *testing.T) {
	t.Parallel()

	ix := newLinkIndex(linkCrate())
	if links := ix.resolve("Plain prose without brackets."); links != nil {
		t.Errorf("resolve = %v, want nil", links)
	}
	if links := ix.resolve(""); links != nil {
		t.Errorf("resolve of empty docs = %v, want nil", links)
	}
}

func TestRendererAttachesLinks(t *testing.T) {
	t.Parallel()

	crate := fillPaths(&model.Crate{
		Name: "mini",
		Module: rootModule(
			model.Item{
				ID: lid(1), Name: "Widget",
				Visibility: model.Visibility{Level: model.VisPublic},
				Docs:       "Pairs well with [`Gadget`].",
				Inner:      model.Struct{StructType: model.StructPlain},
			},
			structItem(lid(2), "Gadget"),
		),
	})

	doc, err := RenderCrate(crate, Options{})
	if err != nil {
		t.Fatalf("RenderCrate: %v", err)
	}
	widget := doc.Index["0:1"]
	if widget.Links["Gadget"] != "0:2" {
		t.Errorf("Links = %v, want Gadget -> 0:2", widget.Links)
	}
	gadget := doc.Index["0:2"]
	if gadget.Links != nil {
		t.Errorf("Gadget has no docs, Links = %v", gadget.Links)
	}
}
