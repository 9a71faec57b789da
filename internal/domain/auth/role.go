package auth

import (
	"regexp"
	"strings"
)

// Guest defaults applied whenever no role information is resolvable.
const (
	GuestRole      = "guest"
	GuestRoleLabel = "Invité"
)

// maxRoleDepth bounds recursion through nested role objects.
const maxRoleDepth = 8

var whitespaceRun = regexp.MustCompile(`\s+`)

// roleObjectKeys is the resolution order for role-bearing fields on object
// payloads. The upstream API is not consistent about where the role lives
// (sometimes a plain string, sometimes a nested object under one of several
// names), so both snake_case and camelCase spellings are tried.
var roleObjectKeys = []string{
	"slug", "role_slug", "roleSlug",
	"name", "role_name", "roleName",
	"label", "roleLabel",
	"title",
	"role",
	"type", "user_type", "userType",
}

// NormalizeRole maps any role representation the upstream API produces to the
// canonical (slug, label) pair. It is total: every input, including nil,
// unrecognized types, and empty objects, resolves to the guest defaults.
//
// Strings are trimmed; the label keeps the trimmed original, the slug is the
// lowercased form with whitespace runs collapsed to single underscores.
// Objects are resolved by trying roleObjectKeys in order and recursing into
// the first non-empty candidate.
func NormalizeRole(candidate any) (role, label string) {
	return normalizeRole(candidate, 0)
}

func normalizeRole(candidate any, depth int) (string, string) {
	if depth > maxRoleDepth {
		return GuestRole, GuestRoleLabel
	}

	switch v := candidate.(type) {
	case nil:
		return GuestRole, GuestRoleLabel
	case string:
		return normalizeRoleString(v)
	case RoleValue:
		return normalizeRole(v.Candidate(), depth+1)
	case *RoleValue:
		if v == nil {
			return GuestRole, GuestRoleLabel
		}
		return normalizeRole(v.Candidate(), depth+1)
	case map[string]any:
		for _, key := range roleObjectKeys {
			nested, ok := v[key]
			if !ok || emptyCandidate(nested) {
				continue
			}
			return normalizeRole(nested, depth+1)
		}
		return GuestRole, GuestRoleLabel
	default:
		return GuestRole, GuestRoleLabel
	}
}

func normalizeRoleString(raw string) (string, string) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return GuestRole, GuestRoleLabel
	}

	slug := whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
	if slug == "" {
		// Keep the non-empty label but fall back to the guest slug.
		slug = GuestRole
	}
	return slug, label
}

// emptyCandidate reports whether a decoded JSON value carries no usable role
// information.
func emptyCandidate(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// firstRoleCandidate returns the first candidate with usable role
// information, or nil when none qualifies.
func firstRoleCandidate(candidates ...any) any {
	for _, c := range candidates {
		if !emptyCandidate(c) {
			return c
		}
	}
	return nil
}
