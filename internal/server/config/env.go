package config

// Environment variables recognised by parseEnv. They exist so the signing
// secret does not have to appear on the command line.
const (
	EnvDatabaseDSN = "JOBFIND_DATABASE_DSN"
	EnvSecretKey   = "JOBFIND_SECRET_KEY"
	EnvCORSOrigins = "JOBFIND_CORS_ORIGINS"
)

func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup(EnvCORSOrigins); ok && v != "" {
		config.CORSOrigins = splitOrigins(v)
	}
}
