// Package identity projects a token's verified claims into the normalized
// user record the rest of the application consumes.
package identity

import "fmt"

// Record is the normalized identity of a validated caller. It is created
// once per successful validation and never persisted by this module.
type Record struct {
	// ID prefers the immutable object identifier (oid) and falls back to
	// the subject claim.
	ID string

	// Name is the display name claim, when present.
	Name string

	// Email is resolved from preferred_username, then upn, then email,
	// then the first element of a list-valued emails claim.
	Email string

	// Groups holds the group identifiers of the caller, each coerced to
	// its string form. Empty unless the app registration emits the groups
	// claim.
	Groups []string

	// Claims is the full verified claim set, for downstream use.
	Claims map[string]interface{}
}

// Project maps a verified claim set into a Record. It is total: absent or
// unexpectedly shaped claims leave the corresponding field empty, never an
// error.
func Project(claims map[string]interface{}) *Record {
	return &Record{
		ID:     firstString(claims, "oid", "sub"),
		Name:   stringClaim(claims["name"]),
		Email:  emailOf(claims),
		Groups: groupsOf(claims["groups"]),
		Claims: claims,
	}
}

func emailOf(claims map[string]interface{}) string {
	if v := firstString(claims, "preferred_username", "upn", "email"); v != "" {
		return v
	}

	// B2C tenants emit a list-valued emails claim instead.
	switch list := claims["emails"].(type) {
	case []interface{}:
		if len(list) > 0 {
			return stringClaim(list[0])
		}
	case []string:
		if len(list) > 0 {
			return list[0]
		}
	}

	return ""
}

func groupsOf(claim interface{}) []string {
	switch list := claim.(type) {
	case []string:
		groups := make([]string, len(list))
		copy(groups, list)
		return groups
	case []interface{}:
		groups := make([]string, 0, len(list))
		for _, g := range list {
			groups = append(groups, coerceString(g))
		}
		return groups
	default:
		return []string{}
	}
}

func firstString(claims map[string]interface{}, names ...string) string {
	for _, name := range names {
		if v := stringClaim(claims[name]); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(claim interface{}) string {
	s, _ := claim.(string)
	return s
}

func coerceString(claim interface{}) string {
	if s, ok := claim.(string); ok {
		return s
	}
	return fmt.Sprint(claim)
}
