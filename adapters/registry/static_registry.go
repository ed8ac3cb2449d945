package registry

import (
	"strings"

	"github.com/bazaar-labs/gatehouse/ports"
)

// StaticRegistry is a configuration-loaded admin allow-list. Addresses are
// normalized to lowercase at construction so lookup never depends on the
// checksum casing a wallet happens to report.
type StaticRegistry struct {
	admins map[string]struct{}
}

// NewStaticRegistry creates a registry from a list of wallet addresses
func NewStaticRegistry(wallets []string) ports.AdminRegistry {
	admins := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		admins[w] = struct{}{}
	}
	return &StaticRegistry{admins: admins}
}

// NewStaticRegistryFromEnv creates a registry from a comma-separated list,
// the format used by the GATEHOUSE_ADMIN_WALLETS environment variable.
func NewStaticRegistryFromEnv(value string) ports.AdminRegistry {
	return NewStaticRegistry(strings.Split(value, ","))
}

// IsAdmin reports whether the wallet is on the allow-list
func (r *StaticRegistry) IsAdmin(wallet string) bool {
	_, ok := r.admins[strings.ToLower(wallet)]
	return ok
}
