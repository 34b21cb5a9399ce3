package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// AdminOnlyMiddleware ensures the requester holds the admin role
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "admin" {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "admin access required")
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// TechnicianOnlyMiddleware ensures the requester holds the technician role.
// Ownership of the concrete order is checked later, in the service layer.
func TechnicianOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "technician" {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "technician access required")
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// UserIDFromTokenMiddleware extracts the user ID from the JWT and stores it
// in the request context for routes open to both roles.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}
