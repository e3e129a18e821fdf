package mcp

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"cratedoc/internal/docjson"
)

// Store loads built document artifacts from the docs directory and
// keeps recently used ones in memory. Concurrent loads of the same
// crate collapse into a single file read.
type Store struct {
	dir   string
	cache *lru.Cache[string, *docjson.Crate]
	group singleflight.Group
}

func NewStore(dir string, cacheSize int) (*Store, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *docjson.Crate](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Load returns the document for a crate version, reading it from disk
// on a cache miss. Compressed artifacts are preferred when both forms
// exist.
func (s *Store) Load(name, version string) (*docjson.Crate, error) {
	key := name + "@" + version
	if doc, ok := s.cache.Get(key); ok {
		return doc, nil
	}

	doc, err, _ := s.group.Do(key, func() (interface{}, error) {
		if doc, ok := s.cache.Get(key); ok {
			return doc, nil
		}
		for _, ext := range []string{".json.zst", ".json"} {
			path := docjson.ArtifactPath(s.dir, name, version, ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			doc, err := docjson.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", key, err)
			}
			s.cache.Add(key, doc)
			return doc, nil
		}
		return nil, fmt.Errorf("no document artifact for %s in %s", key, s.dir)
	})
	if err != nil {
		return nil, err
	}
	return doc.(*docjson.Crate), nil
}
