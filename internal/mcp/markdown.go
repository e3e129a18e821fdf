package mcp

import (
	"fmt"
	"strings"

	"cratedoc/internal/docjson"
	"cratedoc/internal/markdown"
)

// docURI builds the resource URI for an item path.
func docURI(crate, version, path string) string {
	return fmt.Sprintf("cratedoc://%s/%s/%s", crate, version, path)
}

func pathFor(doc *docjson.Crate, id docjson.ID) string {
	if summary, ok := doc.Paths[id]; ok {
		return strings.Join(summary.Path, "::")
	}
	return string(id)
}

// itemMarkdown renders one documented item: a heading with its path,
// the kind, any deprecation notice, the doc text with resolved links
// rewritten to cratedoc URIs, and lists of related items.
func itemMarkdown(crate, version string, doc *docjson.Crate, item docjson.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n*%s*\n", pathFor(doc, item.ID), item.Kind)

	if d := item.Deprecation; d != nil {
		b.WriteString("\n> Deprecated")
		if d.Since != nil {
			fmt.Fprintf(&b, " since %s", *d.Since)
		}
		if d.Note != nil {
			fmt.Fprintf(&b, ": %s", *d.Note)
		}
		b.WriteString("\n")
	}

	if item.Docs != "" {
		b.WriteString("\n")
		b.WriteString(rewriteDocLinks(crate, version, doc, item))
		b.WriteString("\n")
	}

	writeRelated(&b, crate, version, doc, item.Inner)
	return b.String()
}

func rewriteDocLinks(crate, version string, doc *docjson.Crate, item docjson.Item) string {
	if len(item.Links) == 0 {
		return item.Docs
	}
	resolved := make(map[string]string, len(item.Links))
	for target, id := range item.Links {
		resolved[target] = docURI(crate, version, pathFor(doc, id))
	}
	return markdown.RewriteLinks(item.Docs, resolved)
}

func writeRelated(b *strings.Builder, crate, version string, doc *docjson.Crate, body docjson.Body) {
	section := func(title string, ids []docjson.ID) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(b, "\n## %s\n\n", title)
		for _, id := range ids {
			path := pathFor(doc, id)
			fmt.Fprintf(b, "- [`%s`](%s)\n", path, docURI(crate, version, path))
		}
	}

	switch body := body.(type) {
	case docjson.Module:
		section("Items", body.Items)
	case docjson.Struct:
		section("Fields", body.Fields)
		section("Implementations", body.Impls)
	case docjson.Enum:
		section("Variants", body.Variants)
		section("Implementations", body.Impls)
	case docjson.Trait:
		section("Items", body.Items)
		section("Implementors", body.Implementors)
	case docjson.Impl:
		section("Items", body.Items)
	case docjson.StrippedBody:
		writeRelated(b, crate, version, doc, body.Inner)
	}
}
