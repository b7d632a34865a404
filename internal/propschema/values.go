package propschema

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"net/url"

	"github.com/shopspring/decimal"
)

// Validation codes for circuit property value maps.
const (
	CodeValuesNotObject    = "properties_not_object"
	CodeRequiredKeyMissing = "required_property_missing"
	CodeRequiredKeyNull    = "required_property_null"
	CodeNotNumeric         = "property_not_numeric"
	CodeNotBoolean         = "property_not_boolean"
	CodeNotURL             = "property_not_url"
	CodeNotNetwork         = "property_not_network"
)

// ValidateValues checks a candidate property value map against a resolved
// schema and returns the normalized map to store. The output contains
// exactly the schema's keys: submitted values that validated, or nil for
// optional keys that were absent. Input keys with no schema definition are
// dropped silently. The returned code is empty on success.
//
// A schema with zero definitions accepts anything and yields an empty map.
func ValidateValues(schema []Definition, input map[string]any) (map[string]any, string) {
	out := make(map[string]any, len(schema))
	if len(schema) == 0 {
		return out, ""
	}
	if input == nil {
		input = map[string]any{}
	}

	for _, def := range schema {
		value, present := input[def.Key]
		if !present {
			if def.Required {
				return nil, CodeRequiredKeyMissing
			}
			out[def.Key] = nil
			continue
		}
		if isEmpty(value) {
			if def.Required {
				return nil, CodeRequiredKeyNull
			}
			out[def.Key] = value
			continue
		}

		switch def.Kind {
		case KindText:
			value = coerceString(value)
		case KindNumeric:
			if !isNumeric(value) {
				return nil, CodeNotNumeric
			}
		case KindBoolean:
			if _, ok := value.(bool); !ok {
				return nil, CodeNotBoolean
			}
		case KindLink:
			if !isAbsoluteURL(value) {
				return nil, CodeNotURL
			}
		case KindNetwork:
			if !isNetwork(value) {
				return nil, CodeNotNetwork
			}
		}
		out[def.Key] = value
	}
	return out, ""
}

// isEmpty reports whether a submitted value counts as absent for the
// required check: JSON null or the empty string.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// isNumeric accepts integers, floats, arbitrary-precision decimals and
// decimal-formatted strings. Booleans are explicitly not numeric.
func isNumeric(v any) bool {
	switch n := v.(type) {
	case bool:
		return false
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case decimal.Decimal:
		return true
	case json.Number:
		_, err := decimal.NewFromString(n.String())
		return err == nil
	case string:
		_, err := decimal.NewFromString(n)
		return err == nil
	}
	return false
}

// isAbsoluteURL requires both a scheme and a host component.
func isAbsoluteURL(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// isNetwork accepts an IPv4 or IPv6 address or CIDR network.
func isNetwork(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	_, err := netip.ParsePrefix(s)
	return err == nil
}
