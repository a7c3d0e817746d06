package config

import (
	"flag"
	"strings"
	"time"

	"github.com/jobfind/jobfind/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-t", "-r", "-cookie-secure", "-bcrypt-cost", "-cors-origins"}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g., ":8080")
//	-g string          gRPC bind address (e.g., ":50051"), empty disables gRPC
//	-d string          PostgreSQL DSN, or "memory"
//	-s string          JWT HMAC secret key
//	-t int             access token ttl, seconds
//	-r int             refresh token ttl, seconds
//	-cookie-secure     set Secure on the refresh cookie (default true)
//	-bcrypt-cost int   bcrypt work factor
//	-cors-origins      comma-separated allowed browser origins
//
// Unknown flags are filtered out first so the JSON -c/-config flag and any
// flags owned by other components do not cause a parse error.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to listen on")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT signing secret")

	accessTTL := fs.Int64("t", int64(config.AccessTokenTTL/time.Second), "access token ttl (in seconds)")
	refreshTTL := fs.Int64("r", int64(config.RefreshTokenTTL/time.Second), "refresh token ttl (in seconds)")

	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark the refresh cookie Secure")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt work factor")
	origins := fs.String("cors-origins", strings.Join(config.CORSOrigins, ","), "comma-separated allowed CORS origins")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTTL) * time.Second
	config.RefreshTokenTTL = time.Duration(*refreshTTL) * time.Second
	config.CORSOrigins = splitOrigins(*origins)
}
