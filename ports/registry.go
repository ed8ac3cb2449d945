package ports

// AdminRegistry holds the authoritative set of wallets permitted admin
// privileges. Lookup is case-insensitive; the allow-list is loaded from
// configuration and has no mutation API.
type AdminRegistry interface {
	IsAdmin(wallet string) bool
}
