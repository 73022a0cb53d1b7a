package models

import "testing"

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want CommandType
		args []string
	}{
		{"/stock 4006381333931", CommandStock, []string{"4006381333931"}},
		{"  LOW ", CommandLow, nil},
		{"receive 0190aBcD", CommandReceive, []string{"0190aBcD"}},
		{"/Report", CommandReport, nil},
		{"hello there", CommandUnknown, []string{"there"}},
		{"", CommandUnknown, nil},
	}
	for _, tc := range cases {
		got := ParseCommand(tc.in)
		if got.Type != tc.want {
			t.Fatalf("ParseCommand(%q).Type=%s want %s", tc.in, got.Type, tc.want)
		}
		if len(got.Args) != len(tc.args) {
			t.Fatalf("ParseCommand(%q).Args=%v want %v", tc.in, got.Args, tc.args)
		}
		for i := range tc.args {
			if got.Args[i] != tc.args[i] {
				t.Fatalf("ParseCommand(%q).Args=%v want %v", tc.in, got.Args, tc.args)
			}
		}
	}
}
