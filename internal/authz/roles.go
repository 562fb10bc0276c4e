package authz

// Role is a closed set; raw string comparisons stay inside this package.
type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

func Parse(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// CanReview — doctors and admins may approve/disapprove answers.
func CanReview(r Role) bool {
	return r == RoleDoctor || r == RoleAdmin
}

func IsAdmin(r Role) bool {
	return r == RoleAdmin
}

// Decision is what a guard check resolves to; rendering (redirect vs 403)
// belongs to the transport layer.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionNeedLogin
	DecisionForbidden
)

// Check resolves the access decision for a request. An empty role means
// an anonymous visitor. With no allowed roles listed, any authenticated
// identity passes.
func Check(r Role, allowed ...Role) Decision {
	if !r.Valid() {
		return DecisionNeedLogin
	}
	if len(allowed) == 0 {
		return DecisionAllow
	}
	for _, a := range allowed {
		if r == a {
			return DecisionAllow
		}
	}
	return DecisionForbidden
}
