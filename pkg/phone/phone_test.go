package phone

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"555-1", true},
		{"5551234567", true},
		{"+15551234567", true},
		{"+1 (312) 555-0199", true},
		{"0044 20 7946 0958", true},
		{"555.123.4567", true},
		{"", false},
		{"abc", false},
		{"555-CALL", false},
		{"12", false},
		{"+", false},
		{"-555-1", false},
		{"555-1-", false},
		{"123456789012345678901234", false},
	}

	for _, tc := range cases {
		if got := Valid(tc.input); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
