// Copyright (C) 2025 the quixsi maintainers
// See root-dir/LICENSE for more information

package form

import (
	"net/url"
	"reflect"
	"testing"
)

type TestStruct struct {
	StringField string  `form:"string_field"`
	BoolField   bool    `form:"bool_field"`
	IntField    int     `form:"int_field"`
	StringPtr   *string `form:"string_ptr"`
	BoolPtr     *bool   `form:"bool_ptr"`
	Skipped     string  `form:"-"`
	Untagged    string
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUnmarshal(t *testing.T) {
	testCases := []struct {
		name        string
		input       url.Values
		expected    TestStruct
		expectedErr bool
	}{
		{
			name: "Valid input data",
			input: url.Values{
				"string_field": {"test_string"},
				"bool_field":   {"true"},
				"int_field":    {"42"},
				"string_ptr":   {"present"},
				"bool_ptr":     {"false"},
			},
			expected: TestStruct{
				StringField: "test_string",
				BoolField:   true,
				IntField:    42,
				StringPtr:   strPtr("present"),
				BoolPtr:     boolPtr(false),
			},
		},
		{
			name:     "Empty input",
			input:    url.Values{},
			expected: TestStruct{},
		},
		{
			name: "Absent pointer stays nil, empty value sets it",
			input: url.Values{
				"string_ptr": {""},
			},
			expected: TestStruct{
				StringPtr: strPtr(""),
			},
		},
		{
			name: "Checkbox style bool",
			input: url.Values{
				"bool_ptr": {"on"},
			},
			expected: TestStruct{
				BoolPtr: boolPtr(true),
			},
		},
		{
			name: "Bad int",
			input: url.Values{
				"int_field": {"not-a-number"},
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var target TestStruct
			err := Unmarshal(tc.input, &target)
			if (err != nil) != tc.expectedErr {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.expectedErr {
				return
			}
			if !reflect.DeepEqual(target, tc.expected) {
				t.Errorf("Unmarshal did not produce expected result. got: %+v, expected: %+v", target, tc.expected)
			}
		})
	}
}

func TestUnmarshal_InvalidTarget(t *testing.T) {
	if err := Unmarshal(url.Values{}, nil); err == nil {
		t.Error("expected error for nil target")
	}
	var target TestStruct
	if err := Unmarshal(url.Values{}, target); err == nil {
		t.Error("expected error for non-pointer target")
	}
}
