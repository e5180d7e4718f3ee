// Package formtype declares the multi-step questionnaires the wizard serves
// and the fields each step may write.
package formtype

import (
	"fmt"
	"sort"
)

type Kind string

const (
	KindString     Kind = "string"
	KindStringList Kind = "string_list"
	KindNumber     Kind = "number"
	KindBool       Kind = "bool"
	KindObject     Kind = "object"
)

const (
	BrandKit       = "brand_kit"
	ProductService = "product_service"
)

type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

type Step struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Definition is the static configuration of one form type.
type Definition struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	SchemaVersion int    `json:"schema_version"`
	Steps         []Step `json:"steps"`

	fields map[string]Kind
}

func (d *Definition) TotalSteps() int {
	return len(d.Steps)
}

func (d *Definition) FieldKind(name string) (Kind, bool) {
	k, ok := d.fields[name]
	return k, ok
}

// Validate checks every field against the registry and returns a per-field
// message map, empty when everything is valid. A nil value always passes and
// clears the stored value.
func (d *Definition) Validate(fields map[string]interface{}) map[string]string {
	problems := map[string]string{}
	for name, value := range fields {
		kind, ok := d.fields[name]
		if !ok {
			problems[name] = "unknown field"
			continue
		}
		if value == nil {
			continue
		}
		if !matches(kind, value) {
			problems[name] = fmt.Sprintf("must be %s", kind)
		}
	}
	return problems
}

func matches(kind Kind, value interface{}) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch value.(type) {
		case float64, float32, int, int32, int64, uint, uint32, uint64:
			return true
		}
		return false
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindObject:
		_, ok := value.(map[string]interface{})
		return ok
	case KindStringList:
		switch v := value.(type) {
		case []string:
			return true
		case []interface{}:
			for _, item := range v {
				if _, ok := item.(string); !ok {
					return false
				}
			}
			return true
		}
		return false
	}
	return false
}

func newDefinition(name, title string, version int, steps []Step) *Definition {
	d := &Definition{
		Name:          name,
		Title:         title,
		SchemaVersion: version,
		Steps:         steps,
		fields:        map[string]Kind{},
	}
	for i := range d.Steps {
		d.Steps[i].Number = i + 1
		for _, f := range d.Steps[i].Fields {
			if _, dup := d.fields[f.Name]; dup {
				panic(fmt.Sprintf("formtype %s: field %s declared twice", name, f.Name))
			}
			d.fields[f.Name] = f.Kind
		}
	}
	return d
}

// Registry resolves form type names to definitions.
type Registry struct {
	defs map[string]*Definition
}

func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{defs: map[string]*Definition{}}
	for _, d := range defs {
		r.defs[d.Name] = d
	}
	return r
}

// DefaultRegistry holds the forms served in production.
func DefaultRegistry() *Registry {
	return NewRegistry(brandKitDefinition(), productServiceDefinition())
}

func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
