package authz

import "testing"

func TestParse(t *testing.T) {
	for _, s := range []string{"user", "doctor", "admin"} {
		if r, ok := Parse(s); !ok || string(r) != s {
			t.Errorf("Parse(%q) = %q, %v", s, r, ok)
		}
	}
	for _, s := range []string{"", "Admin", "root", "doctor "} {
		if _, ok := Parse(s); ok {
			t.Errorf("Parse(%q) unexpectedly valid", s)
		}
	}
}

func TestPredicates(t *testing.T) {
	if !CanReview(RoleDoctor) || !CanReview(RoleAdmin) {
		t.Error("doctor and admin must be able to review")
	}
	if CanReview(RoleUser) || CanReview(Role("")) {
		t.Error("user/anonymous must not be able to review")
	}
	if !IsAdmin(RoleAdmin) || IsAdmin(RoleDoctor) {
		t.Error("IsAdmin must match admin exactly")
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		allowed []Role
		want    Decision
	}{
		{"anonymous needs login", Role(""), nil, DecisionNeedLogin},
		{"bogus role needs login", Role("hacker"), []Role{RoleAdmin}, DecisionNeedLogin},
		{"any identity passes open check", RoleUser, nil, DecisionAllow},
		{"doctor on admin route forbidden", RoleDoctor, []Role{RoleAdmin}, DecisionForbidden},
		{"admin on admin route", RoleAdmin, []Role{RoleAdmin}, DecisionAllow},
		{"doctor on review route", RoleDoctor, []Role{RoleAdmin, RoleDoctor}, DecisionAllow},
		{"user on review route forbidden", RoleUser, []Role{RoleAdmin, RoleDoctor}, DecisionForbidden},
	}
	for _, tc := range cases {
		if got := Check(tc.role, tc.allowed...); got != tc.want {
			t.Errorf("%s: Check(%q, %v) = %v, want %v", tc.name, tc.role, tc.allowed, got, tc.want)
		}
	}
}
