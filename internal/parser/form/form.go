// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package form

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal fills target from posted form values by `form` struct tag.
// Pointer fields are only set when their key is present, which keeps
// absent fields distinguishable from empty ones for partial updates.
func Unmarshal(input url.Values, target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(target)}
	}

	v := val.Elem()
	ttype := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := ttype.Field(i)
		fieldName := field.Tag.Get("form")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		value, exists := input[fieldName]
		if !exists || len(value) == 0 {
			continue
		}
		// NOTE: Take only the first value.
		if err := setField(v.Field(i), field.Type, value[0]); err != nil {
			return err
		}
	}
	return nil
}

func setField(fieldVal reflect.Value, fieldType reflect.Type, raw string) error {
	if fieldType.Kind() == reflect.Pointer {
		ptr := reflect.New(fieldType.Elem())
		if err := setField(ptr.Elem(), fieldType.Elem(), raw); err != nil {
			return err
		}
		fieldVal.Set(ptr)
		return nil
	}

	// TODO: support all types.
	switch fieldType.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)
	case reflect.Bool:
		fieldVal.SetBool(strings.ToLower(raw) == "true" || raw == "on")
	case reflect.Int:
		if raw == "" {
			return nil
		}
		intValue, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		fieldVal.SetInt(int64(intValue))
	}
	return nil
}

type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}
