package middlewares

const (
	CtxRequestID = "request_id"

	ctxUserIDKey = "auth.userID"
	ctxEmailKey  = "auth.email"
	ctxRoleKey   = "auth.role"

	// set by the admin guard after the DB lookup
	ctxActingUserKey = "auth.actingUser"
)
