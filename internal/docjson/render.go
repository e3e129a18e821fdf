package docjson

import (
	"fmt"
	"log/slog"

	"cratedoc/internal/model"
)

// Options configures a render pass.
type Options struct {
	// IncludeExternalImplementors keeps non-local implementation
	// blocks in trait implementor lists. Off by default: the list
	// then names only blocks the document itself describes.
	IncludeExternalImplementors bool

	// SkipDocLinks disables intra-doc link resolution.
	SkipDocLinks bool
}

// Renderer consumes traversal events for one crate and accumulates the
// flat item index. The index is keyed by ID and shared between the
// flattening pass and relation resolution, which re-enter it during a
// single visit; insertion idempotence is what keeps that safe.
type Renderer struct {
	crate *model.Crate
	opts  Options
	index map[ID]Item
	links *linkIndex
}

// NewRenderer prepares a renderer for one crate.
func NewRenderer(crate *model.Crate, opts Options) *Renderer {
	r := &Renderer{
		crate: crate,
		opts:  opts,
		index: make(map[ID]Item),
	}
	if !opts.SkipDocLinks {
		r.links = newLinkIndex(crate)
	}
	return r
}

// RenderCrate builds the flat document for a loaded documentation tree.
func RenderCrate(crate *model.Crate, opts Options) (*Crate, error) {
	r := NewRenderer(crate, opts)
	if err := model.Walk(crate, r); err != nil {
		return nil, fmt.Errorf("walking %s: %w", crate.Name, err)
	}
	slog.Debug("done with crate", "crate", crate.Name, "items", len(r.index))
	return r.Assemble()
}

// insert records the canonical entry for an item. First write wins;
// re-insertion is a silent no-op so a stub surfaced later can never
// clobber a richer entry.
func (r *Renderer) insert(item Item) {
	if _, ok := r.index[item.ID]; ok {
		return
	}
	r.index[item.ID] = item
}

// Contains reports whether an ID has an index entry.
func (r *Renderer) Contains(id ID) bool {
	_, ok := r.index[id]
	return ok
}

// Size returns the number of indexed items.
func (r *Renderer) Size() int {
	return len(r.index)
}

// EnterModule records the module itself; its membership list comes
// from the tree, and the children follow as their own visits.
func (r *Renderer) EnterModule(it *model.Item) error {
	slog.Debug("entering module", "name", it.Name)
	r.insert(convertItem(it, r.links))
	return nil
}

// LeaveModule closes out a module visit.
func (r *Renderer) LeaveModule(name string) error {
	slog.Debug("exiting module", "name", name)
	return nil
}

// Item flattens one non-module item.
func (r *Renderer) Item(it *model.Item) error {
	slog.Debug("documenting item", "name", it.Name, "id", it.ID)
	r.visit(it)
	return nil
}

// visit indexes an item and, for container kinds, its structurally
// owned members first: a member must never be reachable from the index
// without being present itself. Types and traits get their resolved
// relation lists attached to the converted body before insertion.
func (r *Renderer) visit(it *model.Item) {
	owned := ownedItems(it.Inner)
	for i := range owned {
		r.visit(&owned[i])
	}

	conv := convertItem(it, r.links)
	switch body := conv.Inner.(type) {
	case Struct:
		body.Impls = r.implementationsOf(it.ID)
		conv.Inner = body
	case Enum:
		body.Impls = r.implementationsOf(it.ID)
		conv.Inner = body
	case Trait:
		body.Implementors = r.implementorsOf(it.ID)
		conv.Inner = body
	}
	r.insert(conv)
}

// ownedItems returns the child items a body structurally owns. Module
// members are deliberately excluded: the traversal source delivers
// those as visits of their own.
func ownedItems(body model.Body) []model.Item {
	switch b := body.(type) {
	case model.Struct:
		return b.Fields
	case model.Union:
		return b.Fields
	case model.Enum:
		return b.Variants
	case model.Variant:
		return b.Fields
	case model.Trait:
		return b.Items
	case model.Impl:
		return b.Items
	case model.Stripped:
		return ownedItems(b.Inner)
	}
	return nil
}

// indexMembers flattens and inserts items reached through a relation
// lookup. Unlike visit it never consults the relation tables: members
// are terminal here, which is what guarantees resolution terminates
// when traits and impls reference each other.
func (r *Renderer) indexMembers(items []model.Item) {
	for i := range items {
		it := &items[i]
		r.indexMembers(ownedItems(it.Inner))
		r.insert(convertItem(it, r.links))
	}
}

// implementationsOf resolves the implementation blocks targeting a
// nominal type. Local blocks are flattened, indexed and listed.
// Non-local blocks are never listed; they are indexed only when they
// carry local members, and skipped entirely otherwise, so the document
// never claims ownership of entities it cannot describe. Order follows
// the relation table; a missing entry yields an empty list.
func (r *Renderer) implementationsOf(typeID model.ItemID) []ID {
	blocks := r.crate.Impls[typeID]
	ids := make([]ID, 0, len(blocks))
	for i := range blocks {
		block := &blocks[i]
		if !block.ID.IsLocal() {
			if hasLocalItem(block) {
				r.indexMembers(ownedItems(block.Inner))
				r.insert(convertItem(block, r.links))
			}
			continue
		}
		r.indexMembers(ownedItems(block.Inner))
		r.insert(convertItem(block, r.links))
		ids = append(ids, idFor(block.ID))
	}
	return ids
}

// implementorsOf resolves the implementation blocks for a trait. Every
// block is indexed regardless of locality, so the document can answer
// "who implements this" even for externally defined targets; the
// returned list is filtered to local blocks unless configured to keep
// all of them. Order follows the relation table; a missing entry
// yields an empty list.
func (r *Renderer) implementorsOf(traitID model.ItemID) []ID {
	blocks := r.crate.Implementors[traitID]
	ids := make([]ID, 0, len(blocks))
	for i := range blocks {
		block := &blocks[i]
		r.indexMembers(ownedItems(block.Inner))
		r.insert(convertItem(block, r.links))
		if block.ID.IsLocal() || r.opts.IncludeExternalImplementors {
			ids = append(ids, idFor(block.ID))
		}
	}
	return ids
}

// hasLocalItem reports whether the item or any structurally owned
// descendant is locally defined.
func hasLocalItem(it *model.Item) bool {
	if it.ID.IsLocal() {
		return true
	}
	owned := ownedItems(it.Inner)
	for i := range owned {
		if hasLocalItem(&owned[i]) {
			return true
		}
	}
	return false
}

// Assemble produces the final document from the accumulated index and
// the crate's companion tables. Call it after the traversal completes.
// It fails only when a required upstream table is absent; that is a
// configuration problem, not a data problem.
func (r *Renderer) Assemble() (*Crate, error) {
	if r.crate.Paths == nil {
		return nil, fmt.Errorf("assembling %s: doctree carries no path table", r.crate.Name)
	}
	if r.crate.ExternalCrates == nil {
		return nil, fmt.Errorf("assembling %s: doctree carries no external crate table", r.crate.Name)
	}

	paths := make(map[ID]ItemSummary, len(r.crate.Paths))
	for id, entry := range r.crate.Paths {
		paths[idFor(id)] = ItemSummary{
			CrateID: entry.Crate,
			Path:    entry.Path,
			Kind:    string(entry.Kind),
		}
	}
	externals := make(map[uint32]ExternalCrate, len(r.crate.ExternalCrates))
	for num, info := range r.crate.ExternalCrates {
		externals[num] = ExternalCrate{Name: info.Name, HTMLRootURL: info.HTMLRootURL}
	}

	return &Crate{
		Root:            idFor(r.crate.Module.ID),
		CrateVersion:    r.crate.Version,
		IncludesPrivate: r.crate.IncludesPrivate,
		Index:           r.index,
		Paths:           paths,
		ExternalCrates:  externals,
		FormatVersion:   FormatVersion,
	}, nil
}
