package domain

import "testing"

func TestSplitDisplayName(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Prince", "Prince", ""},
		{"", "", ""},
		{"Jean Luc Picard", "Jean", "Luc Picard"},
		{"  Grace   Hopper  ", "Grace", "Hopper"},
	}
	for _, tc := range cases {
		first, last := SplitDisplayName(tc.in)
		if first != tc.first || last != tc.last {
			t.Errorf("SplitDisplayName(%q) = %q, %q; want %q, %q", tc.in, first, last, tc.first, tc.last)
		}
	}
}
