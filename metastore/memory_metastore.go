package metastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danthegoodman1/icescore/part"
)

type (
	// MemoryMetaStore keeps the run log in process, used when no CRDB_DSN is
	// configured.
	MemoryMetaStore struct {
		mu    sync.RWMutex
		parts map[string][]part.Part
	}
)

func NewMemoryMetaStore() *MemoryMetaStore {
	return &MemoryMetaStore{parts: map[string][]part.Part{}}
}

func (mms *MemoryMetaStore) RecordParts(_ context.Context, parts []part.Part) error {
	for _, p := range parts {
		if p.Namespace == "" {
			return fmt.Errorf("%w: %s", ErrNoNamespace, p.ID)
		}
	}
	mms.mu.Lock()
	defer mms.mu.Unlock()
	now := time.Now()
	for _, p := range parts {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		mms.parts[p.Namespace] = append(mms.parts[p.Namespace], p)
	}
	logger.Debug().Int("parts", len(parts)).Msg("recorded parts in memory")
	return nil
}

func (mms *MemoryMetaStore) ListParts(_ context.Context, namespace string) ([]part.Part, error) {
	mms.mu.RLock()
	defer mms.mu.RUnlock()
	out := make([]part.Part, len(mms.parts[namespace]))
	copy(out, mms.parts[namespace])
	return out, nil
}

func (mms *MemoryMetaStore) Shutdown(context.Context) error {
	return nil
}
