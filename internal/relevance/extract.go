// internal/relevance/extract.go
package relevance

import "encoding/json"

// ChunkRef identifies one documentation chunk. The uniqueness key is the
// (Index, DocID) pair, not the index alone: the same index may appear with
// different document identifiers across merged signals and counts as two
// distinct references. DocID is empty for bare-index signals.
type ChunkRef struct {
	Index int    `json:"index"`
	DocID string `json:"documentDocId,omitempty"`
}

// Document-chunk identifier fields accepted on record-shaped signals.
var docIDFields = []string{"docId", "documentDocId"}

// Extract converts a raw relevance signal into an ordered list of chunk
// references. The signal shape is classified by its first element: a record
// carrying a document-chunk identifier selects the record path, a plain
// integer selects the bare-index path. Empty input, mixed shapes, and any
// other shape yield an empty list: an ambiguous signal is treated as "no
// signal" rather than guessed at.
func Extract(signal json.RawMessage) []ChunkRef {
	if len(signal) == 0 {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(signal, &elems); err != nil {
		return nil
	}
	if len(elems) == 0 {
		return nil
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(elems[0], &first); err == nil {
		if docID(first) == "" {
			return nil
		}
		return extractRecords(elems)
	}

	return extractIndices(elems)
}

// extractRecords emits one ChunkRef per record that carries a usable
// identifier. The synthetic index is the position within the filtered
// output, not the record's position in the input. A non-record element
// fails the whole signal closed.
func extractRecords(elems []json.RawMessage) []ChunkRef {
	refs := make([]ChunkRef, 0, len(elems))
	for _, elem := range elems {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil
		}
		id := docID(rec)
		if id == "" {
			continue
		}
		refs = append(refs, ChunkRef{Index: len(refs), DocID: id})
	}
	return refs
}

// extractIndices decodes a bare-index signal. Any element that is not a
// non-negative integer fails the whole signal closed.
func extractIndices(elems []json.RawMessage) []ChunkRef {
	refs := make([]ChunkRef, 0, len(elems))
	for _, elem := range elems {
		var idx int
		if err := json.Unmarshal(elem, &idx); err != nil || idx < 0 {
			return nil
		}
		refs = append(refs, ChunkRef{Index: idx})
	}
	return refs
}

func docID(rec map[string]json.RawMessage) string {
	for _, field := range docIDFields {
		raw, ok := rec[field]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			return id
		}
	}
	return ""
}
