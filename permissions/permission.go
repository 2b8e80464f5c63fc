package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. Skip marks a public route.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the route. An empty role list admits any signed-in user.
func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions matches a chi route pattern. /v1/bookings and /v1/bookings/ share one entry.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	path = normalize(path)

	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func normalize(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}

	return path
}

func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, err //nolint:wrapcheck
	}

	seen := make(map[string]struct{}, len(permissions.Endpoints))

	for i, endpoint := range permissions.Endpoints {
		permissions.Endpoints[i].Path = normalize(endpoint.Path)

		key := endpoint.Method + " " + permissions.Endpoints[i].Path
		if _, ok := seen[key]; ok {
			log.Warn().Str("endpoint", key).Msg("duplicate permission entry, the first one wins")
		}

		seen[key] = struct{}{}
	}

	return &permissions, nil
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
