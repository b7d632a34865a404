package propschema

import (
	"encoding/json"
)

// MaxKeyLength is the longest allowed property key.
const MaxKeyLength = 250

// Validation codes for schema definition submissions. Each code maps to a
// message in the apierrors catalog.
const (
	CodeSchemaNotArray         = "properties_not_array"
	CodeSchemaEmpty            = "properties_empty"
	CodeItemNotObject          = "property_item_not_object"
	CodeTypeMissing            = "property_type_id_missing"
	CodeTypeUnknown            = "property_type_unknown"
	CodeKeyMissing             = "property_key_missing"
	CodeKeyTooLong             = "property_key_too_long"
	CodeKeyDuplicate           = "property_key_duplicate"
	CodeRequiredFlagMissing    = "property_required_flag_missing"
	CodeRequiredFlagNotBoolean = "property_required_flag_not_boolean"
)

// Definition is one accepted property definition: a typed, keyed,
// required-or-optional field of a CircuitClass schema.
type Definition struct {
	Kind     Kind
	Key      string
	Required bool
}

// ParseDefinitions validates a submitted "properties" payload, as decoded
// from JSON, and produces the ordered schema it describes. Items are
// checked in list order and the first failure wins; the returned code is
// empty on success. Submission order is preserved in the result.
func ParseDefinitions(raw any) ([]Definition, string) {
	if raw == nil {
		return nil, CodeSchemaEmpty
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, CodeSchemaNotArray
	}
	if len(items) == 0 {
		return nil, CodeSchemaEmpty
	}

	defs := make([]Definition, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, CodeItemNotObject
		}

		typeID, ok := obj["property_type_id"]
		if !ok || typeID == nil {
			return nil, CodeTypeMissing
		}
		id, ok := asTypeID(typeID)
		if !ok {
			return nil, CodeTypeUnknown
		}
		kind, ok := KindFromID(id)
		if !ok {
			return nil, CodeTypeUnknown
		}

		rawKey, ok := obj["key"]
		if !ok || rawKey == nil {
			return nil, CodeKeyMissing
		}
		key, ok := rawKey.(string)
		if !ok {
			return nil, CodeKeyMissing
		}
		if len(key) > MaxKeyLength {
			return nil, CodeKeyTooLong
		}
		if _, dup := seen[key]; dup {
			return nil, CodeKeyDuplicate
		}
		seen[key] = struct{}{}

		rawRequired, ok := obj["required"]
		if !ok || rawRequired == nil {
			return nil, CodeRequiredFlagMissing
		}
		required, ok := rawRequired.(bool)
		if !ok {
			return nil, CodeRequiredFlagNotBoolean
		}

		defs = append(defs, Definition{Kind: kind, Key: key, Required: required})
	}
	return defs, ""
}

// asTypeID converts the decoded property_type_id value to an id. JSON
// numbers decode as float64; json.Number and plain ints are handled for
// callers that decode differently.
func asTypeID(v any) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(uint(n)) {
			return 0, false
		}
		return uint(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return uint(i), true
	}
	return 0, false
}
