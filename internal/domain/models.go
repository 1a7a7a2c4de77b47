package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Option is a single selectable record fetched from the backend
type Option struct {
	ID    string
	Name  string
	Extra map[string]any // every other field the backend returned
}

// Field returns an extra field rendered as text, "" when absent
func (o Option) Field(key string) string {
	v, ok := o.Extra[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// SameID reports whether both options refer to the same record.
// Two nils are the same; a nil and a non-nil never are.
func SameID(a, b *Option) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// UnmarshalJSON accepts numeric or string ids and keeps unknown fields in Extra
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode option: %w", err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		return fmt.Errorf("decode option: missing id")
	}
	id, err := decodeID(idRaw)
	if err != nil {
		return err
	}

	var name string
	if nameRaw, ok := raw["name"]; ok && !bytes.Equal(nameRaw, []byte("null")) {
		if err := json.Unmarshal(nameRaw, &name); err != nil {
			return fmt.Errorf("decode option %s: name: %w", id, err)
		}
	}

	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "id" || k == "name" {
			continue
		}
		var val any
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("decode option %s: %s: %w", id, k, err)
		}
		extra[k] = val
	}

	o.ID = id
	o.Name = name
	o.Extra = extra
	return nil
}

// MarshalJSON flattens Extra back next to id and name
func (o Option) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(o.Extra)+2)
	for k, v := range o.Extra {
		out[k] = v
	}
	if n, err := strconv.ParseInt(o.ID, 10, 64); err == nil && strconv.FormatInt(n, 10) == o.ID {
		out["id"] = n
	} else {
		out["id"] = o.ID
	}
	out["name"] = o.Name
	return json.Marshal(out)
}

func decodeID(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("decode option: id: %w", err)
	}
	switch id := v.(type) {
	case json.Number:
		return id.String(), nil
	case string:
		if id == "" {
			return "", fmt.Errorf("decode option: empty id")
		}
		return id, nil
	default:
		return "", fmt.Errorf("decode option: id has unsupported type %T", v)
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Query describes one page request against a collection
type Query struct {
	Search  string
	Page    int // 1-based
	Limit   int
	Filters map[string]string
}

// ResultPage is one page of a server-ordered result set
type ResultPage struct {
	Items   []Option
	HasMore bool
	Total   int
}

// Resource names known to the POS backend
const (
	ResourceCategories    = "categories"
	ResourceManufacturers = "manufacturers"
	ResourceUnits         = "units"
	ResourceProducts      = "products"
)

// Resources lists every resource in display order
func Resources() []string {
	return []string{ResourceCategories, ResourceManufacturers, ResourceUnits, ResourceProducts}
}
