//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package entity

import (
	"reflect"
	"strings"

	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// GetAttr reads a named attribute off e: first a matching exported struct
// field (by json tag or Go name, case-insensitive, recursing through
// embedded structs — the same rule criteria.MatchAttrs uses for reading), falling
// back to a key in the entity's "Locals" map field if no struct field
// matches. Returns ok=false if neither resolves.
func GetAttr(e Entity, name string) (any, bool) {
	v := indirect(e)
	if !v.IsValid() {
		return nil, false
	}
	if idx, ok := fieldsByKey(v.Type())[strings.ToLower(name)]; ok {
		return v.FieldByIndex(idx).Interface(), true
	}
	if locals, ok := localsOf(v); ok {
		val, found := locals[name]
		return val, found
	}
	return nil, false
}

// SetAttr mutates a named attribute on e, the Go analogue of the reference
// implementation's WatchedEntityProxy.__setattr__ (spec.md §4.6). Since Go
// has no dynamic attribute interception, the mutable surface is limited to
// e's own exported struct fields (type-converted from value where
// possible) and, failing that, a key within its "Locals" map field — the
// node's namespace layer (spec.md §3). Returns the old value for event
// recording.
func SetAttr(e Entity, name string, value any) (old any, err error) {
	v := indirect(e)
	if !v.IsValid() {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "set_attr: %T is not addressable", e)
	}
	if idx, ok := fieldsByKey(v.Type())[strings.ToLower(name)]; ok {
		field := v.FieldByIndex(idx)
		old = field.Interface()
		nv := reflect.ValueOf(value)
		if value != nil && nv.Type().ConvertibleTo(field.Type()) {
			field.Set(nv.Convert(field.Type()))
			return old, nil
		}
		return old, vmerrors.Wrapf(vmerrors.ErrNotFound, "set_attr: %v not assignable to field %q", value, name)
	}
	locals, ok := localsOf(v)
	if !ok {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "set_attr: no field or locals entry %q on %T", name, e)
	}
	old = locals[name]
	locals[name] = value
	return old, nil
}

// DeleteAttr removes a named attribute from e. Only Locals-map entries can
// be deleted (a struct field has no "absent" state in Go); deleting a
// struct-level field name is an error.
func DeleteAttr(e Entity, name string) (old any, err error) {
	v := indirect(e)
	if !v.IsValid() {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "delete_attr: %T is not addressable", e)
	}
	locals, ok := localsOf(v)
	if !ok {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "delete_attr: %T has no Locals map", e)
	}
	old, existed := locals[name]
	if !existed {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "delete_attr: %q not set", name)
	}
	delete(locals, name)
	return old, nil
}

func indirect(e Entity) reflect.Value {
	if e == nil {
		return reflect.Value{}
	}
	v := reflect.ValueOf(e)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	return v
}

func localsOf(v reflect.Value) (map[string]any, bool) {
	f := v.FieldByName("Locals")
	if !f.IsValid() || f.Kind() != reflect.Map {
		return nil, false
	}
	if f.IsNil() {
		if !f.CanSet() {
			return nil, false
		}
		f.Set(reflect.MakeMap(f.Type()))
	}
	m, ok := f.Interface().(map[string]any)
	return m, ok
}

// fieldsByKey indexes t's exported fields (recursing through embedded
// structs) by lower-cased json tag name and by lower-cased Go field name;
// mirrors criteria.fieldsByKey (duplicated here to avoid entity importing
// criteria, which itself imports entity).
func fieldsByKey(t reflect.Type) map[string][]int {
	out := map[string][]int{}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			idx := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, idx)
				continue
			}
			if f.PkgPath != "" {
				continue
			}
			out[strings.ToLower(f.Name)] = idx
			if tag, ok := f.Tag.Lookup("json"); ok {
				name := strings.Split(tag, ",")[0]
				if name != "" && name != "-" {
					out[strings.ToLower(name)] = idx
				}
			}
		}
	}
	walk(t, nil)
	return out
}
