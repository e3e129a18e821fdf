package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"cratedoc/internal/docjson"
)

// Relation kinds stored in the relations table.
const (
	RelationImpl        = "impl"
	RelationImplementor = "implementor"
)

// StoreDocument exports an assembled document into the database,
// replacing any previous export of the same crate version. The crate
// row keeps its ID across re-exports.
func (db *DB) StoreDocument(name string, doc *docjson.Crate) (*Crate, error) {
	version := "unknown"
	if doc.CrateVersion != nil {
		version = *doc.CrateVersion
	}

	crate, err := db.UpsertCrate(name, version, string(doc.Root), doc.FormatVersion, doc.IncludesPrivate)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteCrateData(crate.ID); err != nil {
		return nil, err
	}

	for _, id := range sortedIDs(doc.Index) {
		item := doc.Index[id]
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encoding item %s: %w", id, err)
		}

		itemName := ""
		if item.Name != nil {
			itemName = *item.Name
		}
		path := ""
		if summary, ok := doc.Paths[id]; ok {
			path = strings.Join(summary.Path, "::")
		}

		if err := db.InsertItem(&Item{
			CrateID:    crate.ID,
			ItemID:     string(id),
			Name:       itemName,
			Path:       path,
			Kind:       item.Kind,
			Docs:       item.Docs,
			Deprecated: item.Deprecation != nil,
			Raw:        string(raw),
		}); err != nil {
			return nil, err
		}

		if err := db.storeRelations(crate.ID, id, item.Inner); err != nil {
			return nil, err
		}
	}

	for _, id := range sortedIDs(doc.Paths) {
		summary := doc.Paths[id]
		if err := db.InsertPath(crate.ID, string(id), strings.Join(summary.Path, "::"), summary.Kind, summary.CrateID); err != nil {
			return nil, err
		}
	}

	return crate, nil
}

func (db *DB) storeRelations(crateID int, from docjson.ID, body docjson.Body) error {
	insert := func(targets []docjson.ID, kind string) error {
		for _, to := range targets {
			if err := db.InsertRelation(crateID, string(from), string(to), kind); err != nil {
				return err
			}
		}
		return nil
	}

	switch b := body.(type) {
	case docjson.Struct:
		return insert(b.Impls, RelationImpl)
	case docjson.Enum:
		return insert(b.Impls, RelationImpl)
	case docjson.Trait:
		return insert(b.Implementors, RelationImplementor)
	case docjson.StrippedBody:
		return db.storeRelations(crateID, from, b.Inner)
	}
	return nil
}

// sortedIDs gives a stable insertion order for map-backed tables.
func sortedIDs[V any](m map[docjson.ID]V) []docjson.ID {
	ids := make([]docjson.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
