package auth

import "strings"

// RolePrefix is prepended to stored role labels for internal authorization
// checks and stripped again when scopes are embedded in a token. The
// round-trip must stay exact: "ADMIN,USER" -> {"ROLE_ADMIN","ROLE_USER"}
// -> token scope ["ADMIN","USER"].
const RolePrefix = "ROLE_"

// Authorities splits a stored comma-joined role string into prefixed
// authorities. An empty role string yields a single empty-label authority,
// matching how the stored representation has always been interpreted.
func Authorities(role string) []string {
	parts := strings.Split(role, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = RolePrefix + p
	}
	return out
}

// Scopes strips the authority prefix back off for token scope claims.
func Scopes(authorities []string) []string {
	out := make([]string, len(authorities))
	for i, a := range authorities {
		out[i] = strings.TrimPrefix(a, RolePrefix)
	}
	return out
}
