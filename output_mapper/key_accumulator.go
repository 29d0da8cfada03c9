package output_mapper

import (
	"sort"

	"github.com/danthegoodman1/icescore/table"
)

// KeyAccumulator collects the keys seen across map results in first-seen
// order. Keys that first appear together in one result are added sorted so
// the column order does not depend on map iteration.
type KeyAccumulator struct {
	keys  []string
	known map[string]struct{}
}

func NewKeyAccumulator() *KeyAccumulator {
	return &KeyAccumulator{known: make(map[string]struct{})}
}

// WriteKeys accumulates the keys of one result.
func (ka *KeyAccumulator) WriteKeys(row map[string]any) {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	ka.add(keys)
}

func (ka *KeyAccumulator) writeCells(cells map[string]table.Cell) {
	keys := make([]string, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	ka.add(keys)
}

func (ka *KeyAccumulator) add(keys []string) {
	var added []string
	for _, key := range keys {
		if ka.keyExists(key) {
			continue
		}
		added = append(added, key)
	}
	sort.Strings(added)
	for _, key := range added {
		ka.known[key] = struct{}{}
		ka.keys = append(ka.keys, key)
	}
}

func (ka *KeyAccumulator) keyExists(key string) (exists bool) {
	_, exists = ka.known[key]
	return
}

func (ka *KeyAccumulator) Keys() []string {
	out := make([]string, len(ka.keys))
	copy(out, ka.keys)
	return out
}

func (ka *KeyAccumulator) Len() int { return len(ka.keys) }
