package common

// RefreshTokenCookieName is the cookie that carries the refresh token between
// the browser and the HTTP boundary.
const RefreshTokenCookieName = "refresh_token"

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// Roles assigned to users.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
