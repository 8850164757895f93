package config

import "strings"

// PrefixConfig holds the mount points of each route group.
//
// Example environment variables:
//
//	API_PREFIX_ACCOUNTS=/api/accounts
//	API_PREFIX_WPH=/api/wph
type PrefixConfig struct {
	Accounts string `env:"API_PREFIX_ACCOUNTS" env-default:"/api/accounts"`
	Regions  string `env:"API_PREFIX_REGIONS" env-default:"/api/regions"`
	Products string `env:"API_PREFIX_PRODUCTS" env-default:"/api/products"`
	Farmers  string `env:"API_PREFIX_FARMERS" env-default:"/api/farmers"`
	WPH      string `env:"API_PREFIX_WPH" env-default:"/api/wph"`
}

// DefaultPrefixes returns the route layout of the public API.
func DefaultPrefixes() PrefixConfig {
	return PrefixConfig{
		Accounts: "/api/accounts",
		Regions:  "/api/regions",
		Products: "/api/products",
		Farmers:  "/api/farmers",
		WPH:      "/api/wph",
	}
}

// BuildPrefixesFromBase builds prefix configuration from a base path.
//
//	BuildPrefixesFromBase("/api/v1")
//	// Accounts: "/api/v1/accounts", Regions: "/api/v1/regions", ...
func BuildPrefixesFromBase(basePath string) PrefixConfig {
	basePath = strings.TrimSuffix(basePath, "/")
	return PrefixConfig{
		Accounts: basePath + "/accounts",
		Regions:  basePath + "/regions",
		Products: basePath + "/products",
		Farmers:  basePath + "/farmers",
		WPH:      basePath + "/wph",
	}
}

// LoadPrefixConfig returns BuildPrefixesFromBase(API_PREFIX_BASE) when set,
// otherwise the defaults with individual API_PREFIX_* overrides applied.
func LoadPrefixConfig() PrefixConfig {
	if base := GetEnvOrDefault("API_PREFIX_BASE", ""); base != "" {
		return BuildPrefixesFromBase(base)
	}
	p := DefaultPrefixes()
	p.Accounts = GetEnvOrDefault("API_PREFIX_ACCOUNTS", p.Accounts)
	p.Regions = GetEnvOrDefault("API_PREFIX_REGIONS", p.Regions)
	p.Products = GetEnvOrDefault("API_PREFIX_PRODUCTS", p.Products)
	p.Farmers = GetEnvOrDefault("API_PREFIX_FARMERS", p.Farmers)
	p.WPH = GetEnvOrDefault("API_PREFIX_WPH", p.WPH)
	return p
}
