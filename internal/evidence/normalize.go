// internal/evidence/normalize.go
package evidence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"connectorgen/internal/common/logger"
)

// AttributeRecord is the canonical form of one extracted attribute. Loose
// upstream shapes are normalized into this before generation sees them.
type AttributeRecord struct {
	Type        string `json:"type"`
	Mandatory   bool   `json:"mandatory,omitempty"`
	MultiValued bool   `json:"multiValued,omitempty"`
	Description string `json:"description,omitempty"`
}

// EndpointRecord is the canonical form of one extracted endpoint.
type EndpointRecord struct {
	Path        string `json:"path"`
	Method      string `json:"method,omitempty"`
	Description string `json:"description,omitempty"`
}

// attributesSchema is what the canonical attribute map must satisfy before
// it is handed to generation as evidence.
const attributesSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"type": {"type": "string", "minLength": 1},
			"mandatory": {"type": "boolean"},
			"multiValued": {"type": "boolean"},
			"description": {"type": "string"}
		},
		"required": ["type"]
	}
}`

var compiledAttributesSchema = gojsonschema.NewStringLoader(attributesSchema)

// attributesEnvelope matches the structured-model shape, where the mapping
// arrives wrapped under an "attributes" key.
type attributesEnvelope struct {
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// NormalizeAttributes converts an attribute payload into the canonical
// record map. Accepted shapes: the structured model ({"attributes": {...}})
// and the loose name-to-record mapping; a record value may also be a bare
// type string. Any unrecognized top-level shape yields an empty map, and
// individual undecodable records are dropped.
func NormalizeAttributes(raw json.RawMessage) map[string]AttributeRecord {
	out := map[string]AttributeRecord{}
	if len(raw) == 0 {
		return out
	}

	var envelope attributesEnvelope
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Attributes != nil {
		fields = envelope.Attributes
	} else if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}

	for name, value := range fields {
		var rec AttributeRecord
		if err := json.Unmarshal(value, &rec); err == nil && rec.Type != "" {
			out[name] = rec
			continue
		}
		var bareType string
		if err := json.Unmarshal(value, &bareType); err == nil && bareType != "" {
			out[name] = AttributeRecord{Type: bareType}
		}
	}
	return out
}

// NormalizeEndpoints converts an endpoint payload into canonical records.
// Accepted shapes: a list of endpoint records and a list of bare path
// strings. Anything else yields an empty list.
func NormalizeEndpoints(raw json.RawMessage) []EndpointRecord {
	if len(raw) == 0 {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}

	out := make([]EndpointRecord, 0, len(elems))
	for _, elem := range elems {
		var rec EndpointRecord
		if err := json.Unmarshal(elem, &rec); err == nil && rec.Path != "" {
			out = append(out, rec)
			continue
		}
		var path string
		if err := json.Unmarshal(elem, &path); err == nil && strings.TrimSpace(path) != "" {
			out = append(out, EndpointRecord{Path: strings.TrimSpace(path)})
		}
	}
	return out
}

// ValidateAttributes schema-checks the canonical attribute map.
func ValidateAttributes(attrs map[string]AttributeRecord) error {
	doc, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	result, err := gojsonschema.Validate(compiledAttributesSchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate attributes: %w", err)
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return fmt.Errorf("attribute evidence invalid: %s", strings.Join(reasons, "; "))
	}
	return nil
}

// SanitizeAttributes normalizes and validates an attribute payload,
// degrading to empty evidence with a warning when validation fails.
func SanitizeAttributes(log logger.Logger, raw json.RawMessage) map[string]AttributeRecord {
	attrs := NormalizeAttributes(raw)
	if len(attrs) == 0 {
		return attrs
	}
	if err := ValidateAttributes(attrs); err != nil {
		log.WithError(err).Warn("Dropping invalid attribute evidence", map[string]interface{}{
			"attributeCount": len(attrs),
		})
		return map[string]AttributeRecord{}
	}
	return attrs
}

// Evidence bundles the structured extraction results handed to every
// generation step.
type Evidence struct {
	Attributes map[string]AttributeRecord `json:"attributes"`
	Endpoints  []EndpointRecord           `json:"endpoints"`
}

// JSON renders the evidence for embedding into a generation step request.
func (e Evidence) JSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(data)
}
