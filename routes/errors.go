package routes

import (
	"errors"
	"net/http"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/services"
	"github.com/elchavez14/Valiacion-de-qr/storage"
	"github.com/elchavez14/Valiacion-de-qr/utils"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// Orders is the lifecycle instance handlers dispatch to; wired in main.
var Orders *services.OrderLifecycle

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(ctx iris.Context, err error) {
	var (
		vErr *services.ValidationError
		nErr *services.NotFoundError
		aErr *services.AuthorizationError
		tErr *services.TokenError
		sErr *services.StateError
		eErr *services.ExpiryError
	)
	switch {
	case errors.As(err, &vErr):
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", vErr.Error())
	case errors.As(err, &nErr):
		utils.JSONError(ctx, http.StatusNotFound, "not_found", nErr.Error())
	case errors.As(err, &aErr):
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", aErr.Error())
	case errors.As(err, &tErr):
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_token", tErr.Error())
	case errors.As(err, &sErr):
		utils.JSONError(ctx, http.StatusConflict, "invalid_state", sErr.Error())
	case errors.As(err, &eErr):
		utils.JSONError(ctx, http.StatusGone, "expired", eErr.Error())
	default:
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// currentUser loads the authenticated user's row; role and active flags
// come from the database, not the token, so revocations apply immediately.
func currentUser(ctx iris.Context) (*models.User, bool) {
	token := jsonWT.Get(ctx)
	claims, ok := token.(*utils.AccessToken)
	if !ok || claims == nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "login required")
		return nil, false
	}
	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "unknown user")
		return nil, false
	}
	return &user, true
}
