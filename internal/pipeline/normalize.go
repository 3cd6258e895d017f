package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cryptoagent/pkg/artifact"
)

// Entry is one coin object with every provider field kept verbatim.
type Entry map[string]json.RawMessage

// NormalizeResult is the cleaned snapshot together with where it came from
// and where it was written.
type NormalizeResult struct {
	Source  string
	Output  string
	Entries []Entry
}

// Normalizer turns the latest raw market snapshot into a cleaned artifact.
type Normalizer struct {
	raw       artifact.Store
	processed artifact.Store
}

func NewNormalizer(raw, processed artifact.Store) *Normalizer {
	return &Normalizer{raw: raw, processed: processed}
}

// Normalize reads the newest market_data artifact, validates its shape and
// writes market_data_cleaned with the same capture timestamp, so running it
// twice on one snapshot rewrites identical bytes.
func (n *Normalizer) Normalize(ctx context.Context) (*NormalizeResult, error) {
	source, err := artifact.Latest(ctx, n.raw, artifact.KindMarketData)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	if err != nil {
		return nil, err
	}
	data, err := n.raw.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	entries, err := ParseSnapshot(source, data)
	if err != nil {
		return nil, err
	}

	_, capturedAt, err := artifact.ParseName(source)
	if err != nil {
		return nil, err
	}
	output := artifact.Name(artifact.KindMarketDataCleaned, capturedAt)
	cleaned, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", output, err)
	}
	if err := n.processed.Put(ctx, output, cleaned); err != nil {
		return nil, fmt.Errorf("write %s: %w", output, err)
	}
	return &NormalizeResult{Source: source, Output: output, Entries: entries}, nil
}

// ParseSnapshot decodes a market snapshot into entries. The top level must be
// a JSON array and every element a JSON object.
func ParseSnapshot(name string, data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Artifact: name, Index: -1, Err: errors.New("top level is not an array")}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, &ParseError{Artifact: name, Index: -1, Err: err}
	}
	entries := make([]Entry, 0, len(elements))
	for i, el := range elements {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			return nil, &ParseError{Artifact: name, Index: i, Err: errors.New("element is not an object")}
		}
		var entry Entry
		if err := json.Unmarshal(el, &entry); err != nil {
			return nil, &ParseError{Artifact: name, Index: i, Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
