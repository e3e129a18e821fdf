package docjson

import (
	"errors"
	"fmt"

	"cratedoc/internal/model"
)

// Validate checks the assembled document's internal consistency: the
// root must be indexed, every local ID referenced from a container
// body or relation list must have an index entry, and every indexed
// item must have a path entry. External references legitimately stay
// outside the index, but never outside the path table.
func (c *Crate) Validate() error {
	var errs []error

	if _, ok := c.Index[c.Root]; !ok {
		errs = append(errs, fmt.Errorf("root %s is not indexed", c.Root))
	}

	for id, item := range c.Index {
		if _, ok := c.Paths[id]; !ok {
			errs = append(errs, fmt.Errorf("indexed item %s has no path entry", id))
		}
		for _, ref := range referencedIDs(item.Inner) {
			if isLocalID(ref) {
				if _, ok := c.Index[ref]; !ok {
					errs = append(errs, fmt.Errorf("item %s references local %s, which is not indexed", id, ref))
				}
			}
			if _, ok := c.Paths[ref]; !ok {
				errs = append(errs, fmt.Errorf("item %s references %s, which has no path entry", id, ref))
			}
		}
	}

	return errors.Join(errs...)
}

// referencedIDs collects every ID a body points at, container members
// and relation targets alike.
func referencedIDs(body Body) []ID {
	switch b := body.(type) {
	case Module:
		return b.Items
	case Struct:
		return append(append([]ID{}, b.Fields...), b.Impls...)
	case Enum:
		return append(append([]ID{}, b.Variants...), b.Impls...)
	case Variant:
		if b.Struct != nil {
			return b.Struct.Fields
		}
	case Trait:
		return append(append([]ID{}, b.Items...), b.Implementors...)
	case Impl:
		return b.Items
	case Import:
		if b.ID != nil {
			return []ID{*b.ID}
		}
	case StrippedBody:
		return referencedIDs(b.Inner)
	}
	return nil
}

func isLocalID(id ID) bool {
	parsed, err := model.ParseItemID(string(id))
	if err != nil {
		return false
	}
	return parsed.IsLocal()
}
