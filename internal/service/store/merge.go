package store

import "encoding/json"

// deepMerge lays overlay over base, descending into nested objects. Arrays
// and scalars are replaced outright, never concatenated. base is reused, not
// copied; callers hand in freshly built maps.
func deepMerge(base, overlay map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	for k, v := range overlay {
		ov, ok := v.(map[string]any)
		if !ok {
			base[k] = v
			continue
		}
		bv, ok := base[k].(map[string]any)
		if !ok {
			base[k] = ov
			continue
		}
		base[k] = deepMerge(bv, ov)
	}
	return base
}

// toMap round-trips a struct through JSON so merging works on one shape.
func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func fromMap(m map[string]any, out any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func subMap(m map[string]any, key string) map[string]any {
	sub, ok := m[key].(map[string]any)
	if !ok {
		sub = map[string]any{}
		m[key] = sub
	}
	return sub
}
