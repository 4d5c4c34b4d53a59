package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteUsers = "/api/v1/users"

	// Session lifecycle
	RouteRegister     = RouteUsers + "/register"
	RouteLogin        = RouteUsers + "/login"
	RouteLogout       = RouteUsers + "/logout"
	RouteRefreshToken = RouteUsers + "/refresh-token"

	// Account
	RouteChangePassword = RouteUsers + "/change-password"
	RouteCurrentUser    = RouteUsers + "/current-user"
	RouteUpdateAccount  = RouteUsers + "/update-Account"
	RouteAvatar         = RouteUsers + "/avatar"
	RouteCoverImage     = RouteUsers + "/coverImage"

	// Videos
	RouteVideos    = "/api/v1/videos"
	RouteVideoByID = RouteVideos + "/{videoId}"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// In-process media (development only)
	RouteMedia = "/media/{key...}"
)
