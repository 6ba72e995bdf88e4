package fastjson

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// encodeAny is the generic Go-value encoder Marshal falls back to once
// it has ruled out *Value and Encodable. It mirrors the structure of the
// ad-hoc Ruby-object walker in original_source/ext/oj's object.c dump
// path: known scalar kinds go straight to a Serializer primitive,
// container kinds recurse, and anything left over — including, under
// ModeStrict, the container kinds themselves — is handled according to
// Options.Mode, the same dialect switch spec.md §6 describes for
// unrecognized types.
func (s *Serializer) encodeAny(x interface{}) error {
	if x == nil {
		s.WriteNull()
		return nil
	}
	switch v := x.(type) {
	case *Value:
		return s.WriteValue(v)
	case Encodable:
		return v.EncodeFastJSON(s)
	case bool:
		s.WriteBool(v)
		return nil
	case string:
		s.WriteString(v)
		return nil
	case int:
		s.WriteInt(int64(v))
		return nil
	case int8:
		s.WriteInt(int64(v))
		return nil
	case int16:
		s.WriteInt(int64(v))
		return nil
	case int32:
		s.WriteInt(int64(v))
		return nil
	case int64:
		s.WriteInt(v)
		return nil
	case uint:
		return s.encodeUint(uint64(v))
	case uint8:
		return s.encodeUint(uint64(v))
	case uint16:
		return s.encodeUint(uint64(v))
	case uint32:
		return s.encodeUint(uint64(v))
	case uint64:
		return s.encodeUint(v)
	case float32:
		return s.WriteFloat(float64(v))
	case float64:
		return s.WriteFloat(v)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		if s.opts.Mode == ModeStrict {
			if rv.Kind() == reflect.Map && rv.Type().Key().Kind() != reflect.String {
				return fmt.Errorf("%w: non-string map key type %s", ErrEncodingPolicy, rv.Type().Key())
			}
			return s.encodeUnrecognized(x)
		}
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return s.encodeSlice(rv)
		case reflect.Map:
			return s.encodeMap(rv)
		default:
			return s.encodeStruct(rv)
		}
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			s.WriteNull()
			return nil
		}
		if s.cycles != nil && rv.Kind() == reflect.Ptr {
			ptr := rv.Pointer()
			if !s.cycles.Enter(ptr) {
				return fmt.Errorf("%w: circular reference detected", ErrType)
			}
			defer s.cycles.Leave(ptr)
		}
		return s.encodeAny(rv.Elem().Interface())
	default:
		return s.encodeUnrecognized(x)
	}
}

func (s *Serializer) encodeUint(v uint64) error {
	if v > 1<<63-1 {
		s.writeQuoted(fmt.Sprintf("%d", v))
		return nil
	}
	s.WriteInt(int64(v))
	return nil
}

func (s *Serializer) encodeSlice(rv reflect.Value) error {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		s.WriteNull()
		return nil
	}
	s.BeginArray()
	for i := 0; i < rv.Len(); i++ {
		if err := s.encodeAny(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	s.EndArray()
	return nil
}

func (s *Serializer) encodeMap(rv reflect.Value) error {
	if rv.IsNil() {
		s.WriteNull()
		return nil
	}
	if rv.Type().Key().Kind() != reflect.String {
		return s.encodeUnrecognized(rv.Interface())
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	s.BeginObject()
	for _, k := range keys {
		s.WriteKey(k.String())
		if err := s.encodeAny(rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	s.EndObject()
	return nil
}

func (s *Serializer) encodeStruct(rv reflect.Value) error {
	t := rv.Type()
	s.BeginObject()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name, omitempty, skip := parseJSONTag(f.Tag.Get("json"), f.Name)
		if skip {
			continue
		}
		fv := rv.Field(i)
		if omitempty && isEmptyValue(fv) {
			continue
		}
		if s.opts.OmitNil && (fv.Kind() == reflect.Ptr || fv.Kind() == reflect.Interface) && fv.IsNil() {
			continue
		}
		s.WriteKey(name)
		if err := s.encodeAny(fv.Interface()); err != nil {
			return err
		}
	}
	s.EndObject()
	return nil
}

func parseJSONTag(tag, fieldName string) (name string, omitempty bool, skip bool) {
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return fieldName, false, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fieldName
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

// encodeUnrecognized applies Options.Mode's dialect to a Go value none
// of the known kinds matched.
func (s *Serializer) encodeUnrecognized(x interface{}) error {
	switch s.opts.Mode {
	case ModeNull:
		s.WriteNull()
		return nil
	case ModeStrict, ModeCompat, ModeCustom:
		return fmt.Errorf("%w: cannot encode value of type %T", ErrType, x)
	default:
		s.WriteNull()
		return nil
	}
}
