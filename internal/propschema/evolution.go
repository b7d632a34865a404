package propschema

// CodeSchemaShrink rejects schema updates that drop a key while circuits
// still reference the class.
const CodeSchemaShrink = "schema_shrink_with_live_circuits"

// CheckEvolution decides whether a new schema may replace the current one
// on a class that still has live circuits. Every key in the current schema
// must survive into the new one; type and required-flag changes are fine,
// and new keys may always be added. The returned string names the first
// missing key, with ok false, when the ratchet is violated.
//
// Callers skip this check entirely when the class has zero live circuits.
func CheckEvolution(currentKeys []string, next []Definition) (string, bool) {
	nextKeys := make(map[string]struct{}, len(next))
	for _, def := range next {
		nextKeys[def.Key] = struct{}{}
	}
	for _, key := range currentKeys {
		if _, ok := nextKeys[key]; !ok {
			return key, false
		}
	}
	return "", true
}
