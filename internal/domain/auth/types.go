// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RoleKind discriminates the raw shapes the upstream API uses for roles.
type RoleKind uint8

const (
	RoleAbsent RoleKind = iota
	RoleString
	RoleObject
)

// RoleValue is the tagged union for heterogeneous role payloads. It is only
// used at the decoding boundary; everything past DecodeProfile sees the
// canonical (Role, RoleLabel) pair on Identity.
type RoleValue struct {
	Kind RoleKind
	Str  string
	Obj  map[string]any
}

// UnmarshalJSON accepts a string, an object, or anything else (treated as
// absent). Shape mismatches never produce an error; only invalid JSON does.
func (v *RoleValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = RoleValue{Kind: RoleString, Str: t}
	case map[string]any:
		*v = RoleValue{Kind: RoleObject, Obj: t}
	default:
		*v = RoleValue{Kind: RoleAbsent}
	}
	return nil
}

// MarshalJSON re-emits the original shape.
func (v RoleValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case RoleString:
		return json.Marshal(v.Str)
	case RoleObject:
		return json.Marshal(v.Obj)
	default:
		return []byte("null"), nil
	}
}

// Candidate returns the value to feed into NormalizeRole.
func (v RoleValue) Candidate() any {
	switch v.Kind {
	case RoleString:
		return v.Str
	case RoleObject:
		return v.Obj
	default:
		return nil
	}
}

// Identity is the resolved, normalized representation of the authenticated
// principal. Role and RoleLabel are always computed together by NormalizeRole
// and are the single source of truth; the passthrough fields mirror whatever
// the upstream profile carried but are not authoritative.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	RoleLabel string `json:"roleLabel"`

	// Passthrough fields retained from the upstream profile.
	RoleSlug string `json:"role_slug,omitempty"`
	RoleName string `json:"role_name,omitempty"`
	Type     string `json:"type,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// rawProfile carries the literal persisted fields before the role pair is
// resolved. Merging happens on this shape so that a stored profile without
// any role information does not spuriously gain a "guest" slug that would
// outrank weaker role fields in a later patch.
type rawProfile struct {
	ID        string
	Email     string
	Name      string
	Role      RoleValue
	RoleLabel string
	RoleSlug  string
	RoleName  string
	Type      string
	UserType  string
}

func decodeRawProfile(data []byte) (rawProfile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	if raw == nil {
		return rawProfile{}, errors.New("decode profile: not an object")
	}

	p := rawProfile{
		ID:        stringField(raw, "id"),
		Email:     stringField(raw, "email"),
		Name:      stringField(raw, "name"),
		RoleLabel: stringField(raw, "roleLabel"),
		RoleSlug:  stringField(raw, "role_slug"),
		RoleName:  stringField(raw, "role_name"),
		Type:      stringField(raw, "type"),
		UserType:  stringField(raw, "user_type"),
	}
	if msg, ok := raw["role"]; ok {
		// A shape mismatch inside an otherwise valid object degrades to
		// absent rather than failing the whole profile.
		_ = p.Role.UnmarshalJSON(msg)
	}
	return p, nil
}

func (p rawProfile) identity() Identity {
	return Identity{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		RoleLabel: p.RoleLabel,
		RoleSlug:  p.RoleSlug,
		RoleName:  p.RoleName,
		Type:      p.Type,
		UserType:  p.UserType,
	}
}

// resolve derives the canonical Identity from the raw fields. A stored
// string role with an accompanying label keeps that label so an already
// resolved pair, guest's included, survives the self-healing re-persist;
// the slug always comes from the role string.
func (p rawProfile) resolve() Identity {
	if role, ok := p.Role.Candidate().(string); ok && strings.TrimSpace(role) != "" && strings.TrimSpace(p.RoleLabel) != "" {
		id := p.identity()
		id.Role, _ = NormalizeRole(role)
		id.RoleLabel = strings.TrimSpace(p.RoleLabel)
		return id
	}
	return p.resolveRole()
}

// resolveRole derives the pair strictly from candidate priority (role,
// roleLabel, role_name, role_slug, type, user_type), ignoring any stored
// pairing between role and roleLabel.
func (p rawProfile) resolveRole() Identity {
	id := p.identity()
	candidate := firstRoleCandidate(p.Role.Candidate(), p.RoleLabel, p.RoleName, p.RoleSlug, p.Type, p.UserType)
	id.Role, id.RoleLabel = NormalizeRole(candidate)
	return id
}

// DecodeProfile parses a persisted or upstream profile payload into an
// Identity with the role pair resolved. It returns an error for malformed
// JSON or non-object payloads so callers decide the failure path explicitly;
// it never panics on unexpected shapes.
func DecodeProfile(data []byte) (Identity, error) {
	p, err := decodeRawProfile(data)
	if err != nil {
		return Identity{}, err
	}
	return p.resolve(), nil
}

// MergeProfile applies a partial update to a stored profile payload and
// returns the re-normalized Identity. The merge is shallow and happens on
// the literal stored fields, so patch priority sees the profile exactly as
// it was persisted.
func MergeProfile(data []byte, patch ProfilePatch) (Identity, error) {
	p, err := decodeRawProfile(data)
	if err != nil {
		return Identity{}, err
	}
	if patch.ID != nil {
		p.ID = *patch.ID
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if patch.RoleLabel != nil {
		p.RoleLabel = *patch.RoleLabel
	}
	if patch.RoleSlug != nil {
		p.RoleSlug = *patch.RoleSlug
	}
	if patch.RoleName != nil {
		p.RoleName = *patch.RoleName
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.UserType != nil {
		p.UserType = *patch.UserType
	}
	// A patched role-bearing field re-resolves from scratch; a stale stored
	// label must not shadow the patched value.
	if patch.Role != nil || patch.RoleLabel != nil || patch.RoleSlug != nil ||
		patch.RoleName != nil || patch.Type != nil || patch.UserType != nil {
		return p.resolveRole(), nil
	}
	return p.resolve(), nil
}

// stringField extracts a string-ish field, coercing JSON numbers to their
// textual form (upstream IDs arrive as either).
func stringField(m map[string]json.RawMessage, key string) string {
	msg, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}
	return ""
}

// ProfilePatch is a partial identity update. Set fields overwrite, absent
// fields keep their prior value.
type ProfilePatch struct {
	ID        *string    `json:"id,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Role      *RoleValue `json:"role,omitempty"`
	RoleLabel *string    `json:"roleLabel,omitempty"`
	RoleSlug  *string    `json:"role_slug,omitempty"`
	RoleName  *string    `json:"role_name,omitempty"`
	Type      *string    `json:"type,omitempty"`
	UserType  *string    `json:"user_type,omitempty"`
}

// TokenRecord is the persisted bearer-token entry. ExpiresAt is absolute,
// in milliseconds since epoch; the token itself is opaque.
type TokenRecord struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Valid reports whether the record holds a token whose expiry is strictly in
// the future.
func (t TokenRecord) Valid(now time.Time) bool {
	return strings.TrimSpace(t.Token) != "" && t.ExpiresAt > now.UnixMilli()
}

// DecodeTokenRecord parses a persisted token record. Malformed JSON, wrong
// shapes, and records without a token all return an error.
func DecodeTokenRecord(data []byte) (TokenRecord, error) {
	var rec TokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return TokenRecord{}, fmt.Errorf("decode token record: %w", err)
	}
	if strings.TrimSpace(rec.Token) == "" {
		return TokenRecord{}, errors.New("decode token record: missing token")
	}
	return rec, nil
}
