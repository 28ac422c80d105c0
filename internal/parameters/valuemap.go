package parameters

import "fmt"

// ValueMap holds the current parameter values keyed by "group.param".
type ValueMap map[string]Value

// Clone returns a shallow copy. A nil map clones to an empty one.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge overwrites keys of m with those of other.
func (m ValueMap) Merge(other ValueMap) {
	for k, v := range other {
		m[k] = v
	}
}

// Keys returns the keys in lexical order.
func (m ValueMap) Keys() []string {
	return sortedKeys(m)
}

func (m ValueMap) Equal(other ValueMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ToMap converts the values into plain Go types, e.g. for job variables.
func (m ValueMap) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// ValueMapFrom converts plain Go values into a ValueMap.
func ValueMapFrom(raw map[string]interface{}) (ValueMap, error) {
	out := make(ValueMap, len(raw))
	for k, item := range raw {
		v, err := FromInterface(item)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
