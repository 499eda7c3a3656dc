package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{" 2.50 ", 2.5, true},
		{"0", 0, true},
		{"-5", -5, true}, // sign rules are the caller's
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmountRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 100, 12.34, 0.1, 299.99, 1234567.89} {
		got, err := ParseAmount(FormatAmount(v))
		if err != nil || got != v {
			t.Fatalf("%v did not round trip: got %v (err=%v)", v, got, err)
		}
	}
}
