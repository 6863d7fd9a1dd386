package api

// Route prefixes served by the HTTP server.
const (
	Version = "/v1"

	AccountsPath      = Version + "/accounts"
	SessionsPath      = Version + "/sessions"
	LoginAttemptsPath = Version + "/login-attempts"
	ServersPath       = Version + "/servers"
	HealthPath        = "/healthz"
)

type endpoint struct {
	method string
	path   string
}

// PublicEndpoints are reachable without a session bearer token. Signing up and
// logging in cannot require a session.
var PublicEndpoints = map[endpoint]bool{
	{method: "POST", path: AccountsPath}: true,
	{method: "POST", path: SessionsPath}: true,
	{method: "GET", path: HealthPath}:    true,
}

// IsPublic reports whether method and path skip session authentication.
func IsPublic(method, path string) bool {
	return PublicEndpoints[endpoint{method: method, path: path}]
}
