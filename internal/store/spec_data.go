package store

import (
	"encoding/json"
)

// SpecKind distinguishes the two kinds of specs served by the control service.
type SpecKind int

const (
	// GateKind identifies feature gate specs.
	GateKind SpecKind = iota
	// ConfigKind identifies dynamic config specs.
	ConfigKind
)

// String returns the name used for this kind in API documents and log output.
func (k SpecKind) String() string {
	if k == ConfigKind {
		return "dynamic config"
	}
	return "feature gate"
}

// SpecEntry is a single gate or config definition as parsed from a spec document. The
// Definition field is the raw ruleset blob; the store does not interpret it.
type SpecEntry struct {
	Name       string
	Kind       SpecKind
	Definition json.RawMessage
}

// SpecDocument is the parsed form of a download_config_specs response or an offline data
// file. Missing lists and a missing timestamp are valid and default to empty/zero.
type SpecDocument struct {
	FeatureGates   []SpecEntry
	DynamicConfigs []SpecEntry
	Time           int64
}

type specDocumentJSON struct {
	FeatureGates   []json.RawMessage `json:"feature_gates"`
	DynamicConfigs []json.RawMessage `json:"dynamic_configs"`
	Time           int64             `json:"time"`
}

type specEntryNameJSON struct {
	Name string `json:"name"`
}

// ParseSpecDocument parses a spec document body. Entries that are not JSON objects or
// that lack a non-empty "name" field are dropped silently; the rest of the document is
// still used. An error is returned only if the document itself is not well-formed.
func ParseSpecDocument(data []byte) (SpecDocument, error) {
	var raw specDocumentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return SpecDocument{}, err
	}
	return SpecDocument{
		FeatureGates:   parseEntries(raw.FeatureGates, GateKind),
		DynamicConfigs: parseEntries(raw.DynamicConfigs, ConfigKind),
		Time:           raw.Time,
	}, nil
}

func parseEntries(rawEntries []json.RawMessage, kind SpecKind) []SpecEntry {
	entries := make([]SpecEntry, 0, len(rawEntries))
	for _, rawEntry := range rawEntries {
		var header specEntryNameJSON
		if err := json.Unmarshal(rawEntry, &header); err != nil {
			continue
		}
		if header.Name == "" {
			continue
		}
		entries = append(entries, SpecEntry{Name: header.Name, Kind: kind, Definition: rawEntry})
	}
	return entries
}
