package rest

const (
	// auth
	RouteAuth     = "/auth"
	RouteLogin    = RouteAuth + "/login"
	RouteRegister = RouteAuth + "/register"

	// files
	RouteFiles          = "/files"
	RouteFileUpload     = RouteFiles + "/upload"
	RouteFile           = RouteFiles + "/:file_id"
	RouteFileShare      = RouteFile + "/share"
	RouteFileDownload   = RouteFiles + "/download/:file_id"
	RoutePublicDownload = RouteFiles + "/public/:file_id"

	// groups
	RouteGroups       = "/groups"
	RouteGroup        = RouteGroups + "/:group_id"
	RouteGroupMembers = RouteGroup + "/members"
	RouteGroupFiles   = RouteGroup + "/files"

	// ops
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
