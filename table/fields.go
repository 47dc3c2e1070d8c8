package table

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// fields flattens a record (struct, pointer to struct or map) into a map keyed
// by json field names. Fields tagged omitempty are kept with their zero value so
// false and 0 still render; fields tagged "-" are left out.
func fields(record any) (map[string]any, error) {
	if m, ok := record.(map[string]any); ok {
		return m, nil
	}
	var out map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(record); err != nil {
		return nil, fmt.Errorf("table: flatten %T: %w", record, err)
	}
	restoreOmitted(out, reflect.ValueOf(record))
	return out, nil
}

// restoreOmitted undoes the two places where mapstructure's struct-to-map
// decoding differs from encoding/json: it skips empty omitempty fields and keeps
// `json:"-"` fields under the literal key "-".
func restoreOmitted(out map[string]any, rv reflect.Value) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || out == nil {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			delete(out, "-")
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		fv := rv.Field(i)
		if _, ok := out[name]; !ok && strings.Contains(opts, "omitempty") {
			out[name] = fv.Interface()
			continue
		}
		if nested, ok := out[name].(map[string]any); ok {
			restoreOmitted(nested, fv)
		}
	}
}

// lookup walks a dotted path through nested maps.
func lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = mm[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// format renders a cell value as text. nil renders empty.
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
