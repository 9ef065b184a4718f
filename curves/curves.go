// Package curves maps group names to their [group.Group] implementations.
package curves

import (
	"fmt"
	"sort"
	"strings"

	"github.com/f3rmion/musig/bjj"
	"github.com/f3rmion/musig/ed25519"
	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/p256"
	"github.com/f3rmion/musig/ristretto"
	"github.com/f3rmion/musig/secp256k1"
)

// Default is the group used when none is configured.
const Default = "ristretto255"

var registry = map[string]func() group.Group{
	"bjj":          func() group.Group { return &bjj.BJJ{} },
	"edwards25519": func() group.Group { return ed25519.New() },
	"p256":         func() group.Group { return p256.New() },
	"ristretto255": func() group.Group { return ristretto.New() },
	"secp256k1":    func() group.Group { return secp256k1.New() },
}

// ByName returns the group registered under name. Lookup is case-insensitive.
func ByName(name string) (group.Group, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown group %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the registered group names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns one instance of every registered group, ordered by name.
func All() []group.Group {
	names := Names()
	groups := make([]group.Group, len(names))
	for i, name := range names {
		groups[i] = registry[name]()
	}
	return groups
}
