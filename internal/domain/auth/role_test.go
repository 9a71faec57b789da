package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole_GuestFallback(t *testing.T) {
	t.Parallel()

	inputs := map[string]any{
		"nil":               nil,
		"empty string":      "",
		"whitespace string": "   ",
		"empty object":      map[string]any{},
		"unrecognized keys": map[string]any{"color": "red", "weight": 3},
		"number":            42.0,
		"bool":              true,
		"array":             []any{"admin"},
		"absent role value": RoleValue{},
	}

	for name, in := range inputs {
		role, label := NormalizeRole(in)
		assert.Equal(t, GuestRole, role, "input %q", name)
		assert.Equal(t, GuestRoleLabel, label, "input %q", name)
	}
}

func TestNormalizeRole_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantRole  string
		wantLabel string
	}{
		{"Admin", "admin", "Admin"},
		{"  Super Admin  ", "super_admin", "Super Admin"},
		{"Boutique  Admin", "boutique_admin", "Boutique  Admin"},
		{"livreur", "livreur", "livreur"},
		{"Chef\tVentes", "chef_ventes", "Chef\tVentes"},
		{"guest", "guest", "guest"},
	}

	for _, tc := range tests {
		role, label := NormalizeRole(tc.in)
		assert.Equal(t, tc.wantRole, role, "input %q", tc.in)
		assert.Equal(t, tc.wantLabel, label, "input %q", tc.in)
	}
}

func TestNormalizeRole_CollapsesWhitespaceRuns(t *testing.T) {
	t.Parallel()

	// Multiple consecutive spaces must collapse to a single underscore,
	// not one underscore per character.
	role, _ := NormalizeRole("Boutique   Admin")
	assert.Equal(t, "boutique_admin", role)
}

func TestNormalizeRole_ObjectShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        map[string]any
		wantRole  string
		wantLabel string
	}{
		{
			name:      "slug key",
			in:        map[string]any{"slug": "Super Admin"},
			wantRole:  "super_admin",
			wantLabel: "Super Admin",
		},
		{
			name:      "role_slug key",
			in:        map[string]any{"role_slug": "commercial"},
			wantRole:  "commercial",
			wantLabel: "commercial",
		},
		{
			name:      "name key",
			in:        map[string]any{"name": "Gestionnaire"},
			wantRole:  "gestionnaire",
			wantLabel: "Gestionnaire",
		},
		{
			name:      "slug wins over name",
			in:        map[string]any{"name": "Whatever", "slug": "admin"},
			wantRole:  "admin",
			wantLabel: "admin",
		},
		{
			name:      "empty slug falls through to name",
			in:        map[string]any{"slug": "  ", "name": "Livreur"},
			wantRole:  "livreur",
			wantLabel: "Livreur",
		},
		{
			name:      "nested role object",
			in:        map[string]any{"role": map[string]any{"label": "Chef Agence"}},
			wantRole:  "chef_agence",
			wantLabel: "Chef Agence",
		},
		{
			name:      "user_type fallback",
			in:        map[string]any{"user_type": "delivery agent"},
			wantRole:  "delivery_agent",
			wantLabel: "delivery agent",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			role, label := NormalizeRole(tc.in)
			assert.Equal(t, tc.wantRole, role)
			assert.Equal(t, tc.wantLabel, label)
		})
	}
}

func TestNormalizeRole_Idempotence(t *testing.T) {
	t.Parallel()

	seeds := []any{
		"Super Admin",
		"Boutique  Admin",
		map[string]any{"slug": "Chef Ventes"},
		map[string]any{"name": "Commercial"},
		nil,
	}

	for _, seed := range seeds {
		role, label := NormalizeRole(seed)

		// Re-normalizing the slug alone keeps the slug.
		role2, _ := NormalizeRole(role)
		assert.Equal(t, role, role2, "slug not stable for seed %v", seed)

		// Re-normalizing the produced pair as an object keeps the label.
		_, label2 := NormalizeRole(map[string]any{"role": role, "roleLabel": label})
		assert.Equal(t, label, label2, "label not stable for seed %v", seed)
	}
}

func TestNormalizeRole_DepthBound(t *testing.T) {
	t.Parallel()

	// Build nesting deeper than maxRoleDepth; resolution gives up at guest.
	deep := map[string]any{"slug": "admin"}
	for i := 0; i < maxRoleDepth+2; i++ {
		deep = map[string]any{"role": deep}
	}
	role, label := NormalizeRole(deep)
	assert.Equal(t, GuestRole, role)
	assert.Equal(t, GuestRoleLabel, label)
}
