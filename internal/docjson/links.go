package docjson

import (
	"strings"

	"cratedoc/internal/markdown"
	"cratedoc/internal/model"
)

// linkIndex resolves intra-doc link candidates against the crate's
// path table. Candidates come out of doc text via the markdown
// package; a candidate resolves when it names a known path exactly,
// relative to the crate root, or unambiguously by bare name.
type linkIndex struct {
	crateName string
	byPath    map[string]ID
	byName    map[string][]ID
}

func newLinkIndex(crate *model.Crate) *linkIndex {
	ix := &linkIndex{
		crateName: crate.Name,
		byPath:    make(map[string]ID, len(crate.Paths)),
		byName:    make(map[string][]ID),
	}
	for id, entry := range crate.Paths {
		if len(entry.Path) == 0 {
			continue
		}
		ix.byPath[strings.Join(entry.Path, "::")] = idFor(id)
		name := entry.Path[len(entry.Path)-1]
		ix.byName[name] = append(ix.byName[name], idFor(id))
	}
	return ix
}

// resolve maps each resolvable link candidate in the doc text to its
// item ID, keyed by the candidate exactly as written. Unresolvable
// candidates are dropped silently; prose brackets are not errors.
func (ix *linkIndex) resolve(docs string) map[string]ID {
	var out map[string]ID
	for _, target := range markdown.LinkTargets(docs) {
		path, ok := markdown.CleanPath(target)
		if !ok {
			continue
		}
		id, ok := ix.lookup(path)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]ID)
		}
		out[target] = id
	}
	return out
}

func (ix *linkIndex) lookup(path string) (ID, bool) {
	if rest, ok := strings.CutPrefix(path, "crate::"); ok {
		path = ix.crateName + "::" + rest
	}
	if id, ok := ix.byPath[path]; ok {
		return id, true
	}
	if id, ok := ix.byPath[ix.crateName+"::"+path]; ok {
		return id, true
	}
	// Bare names resolve only when exactly one item carries the name.
	if !strings.Contains(path, "::") {
		if ids := ix.byName[path]; len(ids) == 1 {
			return ids[0], true
		}
	}
	return "", false
}
