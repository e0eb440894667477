package crm

// Record is the loosely structured row shape returned by queries.
// Relationship projections (e.g. Owner.Email) arrive as nested maps and any
// intermediate node may be missing or null, so all access goes through
// optional-chaining accessors that return a default instead of failing
type Record map[string]any

// GetString walks the given path and returns the string at the leaf,
// or "" when any intermediate node is missing, null, or not a map
func (r Record) GetString(path ...string) string {
	v := r.walk(path)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// GetFloat walks the given path and returns the number at the leaf.
// ok is false when the leaf is missing or null (nullable currency fields)
func (r Record) GetFloat(path ...string) (float64, bool) {
	v := r.walk(path)
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// GetRecord returns the nested record at key, or an empty Record when the
// relationship is absent or null
func (r Record) GetRecord(key string) Record {
	v := r.walk([]string{key})
	switch m := v.(type) {
	case Record:
		return m
	case map[string]any:
		return Record(m)
	}
	return Record{}
}

func (r Record) walk(path []string) any {
	var cur any = map[string]any(r)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			if rm, ok2 := cur.(Record); ok2 {
				m = map[string]any(rm)
			} else {
				return nil
			}
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil
		}
	}
	return cur
}
