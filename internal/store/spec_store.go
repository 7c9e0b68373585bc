// Package store contains the in-memory cache of gate and config definitions, and the
// parsing of the spec documents that populate it.
package store

import (
	"sync"
)

// SpecStore is the local cache of spec definitions, keyed by spec name.
//
// The store is upsert-only: entries absent from a newer document are not removed during
// the lifetime of the process. The key is the name alone, across both kinds; a name that
// is reused for a different kind overwrites the earlier entry. (That matches the control
// service's behavior of never reusing names across kinds in practice.)
//
// Writes come only from the sync path; Lookup is safe for any number of concurrent
// readers.
type SpecStore struct {
	specs map[string]SpecEntry
	lock  sync.RWMutex
}

// NewSpecStore creates an empty SpecStore.
func NewSpecStore() *SpecStore {
	return &SpecStore{specs: make(map[string]SpecEntry)}
}

// ReplaceAll upserts every entry with a non-empty name, overwriting both definition and
// kind for any name already present. Entries with an empty name are skipped.
func (s *SpecStore) ReplaceAll(kind SpecKind, entries []SpecEntry) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		entry.Kind = kind
		s.specs[entry.Name] = entry
	}
}

// ApplyDocument upserts both spec lists from a parsed document.
func (s *SpecStore) ApplyDocument(doc SpecDocument) {
	s.ReplaceAll(GateKind, doc.FeatureGates)
	s.ReplaceAll(ConfigKind, doc.DynamicConfigs)
}

// Lookup returns the most recently seen entry for the name, if any.
func (s *SpecStore) Lookup(name string) (SpecEntry, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry, ok := s.specs[name]
	return entry, ok
}

// Len returns the number of cached specs.
func (s *SpecStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.specs)
}
