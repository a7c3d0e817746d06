package config

import (
	"encoding/json"
	"os"

	"github.com/jobfind/jobfind/internal/flagx"
	"github.com/jobfind/jobfind/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m"-style strings or a number of seconds. Absent fields leave the
// current value untouched.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        *string        `json:"grpc_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL timex.Duration `json:"refresh_token_ttl"`
	CookieSecure    *bool          `json:"cookie_secure"`
	BcryptCost      int            `json:"bcrypt_cost"`
	CORSOrigins     []string       `json:"cors_origins"`
}

// parseJson loads the file named by -c/-config in args, if any, on top of
// config. An unreadable file or invalid JSON panics: both are operator
// mistakes that must stop startup.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.GRPCAddr != nil {
		config.GRPCAddr = *c.GRPCAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
}
