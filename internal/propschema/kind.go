// Package propschema implements the dynamic property schema engine: the
// closed set of value kinds, validation of submitted schema definitions,
// the schema evolution guard, and validation of circuit property values
// against a resolved schema. Everything here is pure; persistence is the
// caller's concern.
package propschema

// Kind enumerates the value kinds a property definition may take. The
// numeric values double as the seeded PropertyType row ids, so they must
// never be reordered.
type Kind uint

const (
	KindText Kind = iota + 1
	KindNumeric
	KindBoolean
	KindLink
	KindNetwork
)

// Kinds returns every known kind in id order.
func Kinds() []Kind {
	return []Kind{KindText, KindNumeric, KindBoolean, KindLink, KindNetwork}
}

// KindFromID resolves a PropertyType id to its kind. The second return
// value is false for ids outside the closed set.
func KindFromID(id uint) (Kind, bool) {
	if id < uint(KindText) || id > uint(KindNetwork) {
		return 0, false
	}
	return Kind(id), true
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindNumeric:
		return "Numeric"
	case KindBoolean:
		return "Boolean"
	case KindLink:
		return "Link"
	case KindNetwork:
		return "Network"
	}
	return "Unknown"
}
