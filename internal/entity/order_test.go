package entity

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"seller", RoleSeller},
		{"buyer", RoleBuyer},
		{"", RoleAny},
		{"observer", RoleAny},
		{"SELLER", RoleAny},
	}

	for _, tc := range cases {
		if got := ParseRole(tc.in); got != tc.want {
			t.Fatalf("ParseRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
