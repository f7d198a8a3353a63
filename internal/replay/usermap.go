package replay

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Identity is a git author identity.
type Identity struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// UserMap translates source author identifiers into git identities.
// Lookups ignore case, matching the source system's treatment of user
// names.
type UserMap map[string]Identity

// LoadUserMap reads a YAML mapping of source users to git identities:
//
//	DOMAIN\jdoe:
//	  name: Jane Doe
//	  email: jane@example.com
//
// An empty path yields an empty map, leaving every identity
// pass-through.
func LoadUserMap(path string) (UserMap, error) {
	if path == "" {
		return UserMap{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("usermap: %w", err)
	}
	var m UserMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("usermap %s: %w", path, err)
	}
	return m, nil
}

// Resolve returns the git identity for a source user. Unmapped users
// keep their raw identifier, with any DOMAIN\ prefix stripped for the
// name and a placeholder address derived from it.
func (m UserMap) Resolve(user string) (name, email string) {
	for k, id := range m {
		if strings.EqualFold(k, user) {
			return id.Name, id.Email
		}
	}

	short := user
	if i := strings.LastIndexByte(user, '\\'); i >= 0 {
		short = user[i+1:]
	}
	return short, short + "@tfs.invalid"
}
