package main

import (
	"testing"

	"github.com/wippyai/ffi-binder/abi"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		fd     string
		params []abi.Carrier
		ret    abi.Carrier
	}{
		{
			"void no args",
			"()",
			"()",
			nil, abi.CarrierNone,
		},
		{
			"short spellings",
			"(i8, i16, i32, i64, f32, f64, ptr) -> i32",
			"(i8, i16, i32, i64, f32, f64, p64) -> i32",
			[]abi.Carrier{abi.CarrierInt8, abi.CarrierInt16, abi.CarrierInt32, abi.CarrierInt64,
				abi.CarrierFloat32, abi.CarrierFloat64, abi.CarrierPointer},
			abi.CarrierInt32,
		},
		{
			"c names",
			"(char, short, int, long, float, double, pointer)",
			"(i8, i16, i32, i64, f32, f64, p64)",
			[]abi.Carrier{abi.CarrierInt8, abi.CarrierInt16, abi.CarrierInt32, abi.CarrierInt64,
				abi.CarrierFloat32, abi.CarrierFloat64, abi.CarrierPointer},
			abi.CarrierNone,
		},
		{
			"struct",
			"(struct{i32, i32}) -> struct{f64, f64}",
			"(struct{i32,i32}) -> struct{f64,f64}",
			[]abi.Carrier{abi.CarrierSegment},
			abi.CarrierSegment,
		},
		{
			"union",
			"(union{i64, f64})",
			"(union{i64,f64})",
			[]abi.Carrier{abi.CarrierSegment},
			abi.CarrierNone,
		},
		{
			"sequence",
			"([1 x i64])",
			"([1 x i64])",
			[]abi.Carrier{abi.CarrierInt64},
			abi.CarrierNone,
		},
		{
			"nested with padding",
			"(struct{i8, x24, i32})",
			"(struct{i8,x24,i32})",
			[]abi.Carrier{abi.CarrierSegment},
			abi.CarrierNone,
		},
		{
			"no spaces",
			"(i32,f64)->ptr",
			"(i32, f64) -> p64",
			[]abi.Carrier{abi.CarrierInt32, abi.CarrierFloat64},
			abi.CarrierPointer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fd, sig, err := ParseSignature(tc.input)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := fd.String(); got != tc.fd {
				t.Errorf("descriptor: got %q, want %q", got, tc.fd)
			}
			if len(sig.Params) != len(tc.params) {
				t.Fatalf("params: got %v, want %v", sig.Params, tc.params)
			}
			for i := range tc.params {
				if sig.Params[i] != tc.params[i] {
					t.Errorf("param %d: got %s, want %s", i, sig.Params[i], tc.params[i])
				}
			}
			if sig.Ret != tc.ret {
				t.Errorf("return: got %s, want %s", sig.Ret, tc.ret)
			}
		})
	}
}

func TestParseSignatureErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing open paren", "i32)"},
		{"missing close paren", "(i32"},
		{"unknown type", "(i33)"},
		{"trailing input", "(i32) i64"},
		{"missing return type", "(i32) ->"},
		{"empty struct", "(struct{})"},
		{"unterminated struct", "(struct{i32)"},
		{"zero count sequence", "([0 x i64])"},
		{"bad sequence count", "([x x i64])"},
		{"unterminated sequence", "([2 x i64)"},
		{"bad padding", "(x0)"},
		{"missing comma", "(i32 i64)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseSignature(tc.input); err == nil {
				t.Errorf("ParseSignature(%q): want error", tc.input)
			}
		})
	}
}
