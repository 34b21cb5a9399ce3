package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/storage"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

var bgContext = context.Background()

// AccessToken is the login token claim set verified on every request.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func CreateTokenPair(id uint) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	userID := strconv.FormatUint(uint64(id), 10)
	refreshClaims := jwt.Claims{Subject: userID}

	// Load role for embedding into the access token
	var u models.User
	role := models.RoleTechnician
	if err := storage.DB.Select("id, role").First(&u, id).Error; err == nil && u.Role != "" {
		role = u.Role
	}

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	storage.Redis.Set(bgContext, string(refreshToken), "true", 365*24*time.Hour+5*time.Minute)

	return &tokenPair, nil
}

func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)
	validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()

	if tokenErr != nil {
		JSONError(ctx, iris.StatusNotFound, "not_found", "refresh token not recognized")
		return
	}

	if validToken != "true" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	storage.Redis.Del(bgContext, tokenStr)
	userID, parseErr := strconv.ParseUint(token.StandardClaims.Subject, 10, 32)
	if parseErr != nil {
		JSONError(ctx, iris.StatusInternalServerError, "server_error", "invalid subject")
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(uint(userID))
	if tokenPairErr != nil {
		JSONError(ctx, iris.StatusInternalServerError, "server_error", tokenPairErr.Error())
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// Order and audit tokens are domain bearer tokens, distinct from login
// tokens: signed with ORDER_TOKEN_SECRET, HS256, each carrying a fresh jti.

type OrderTokenClaims struct {
	Typ          string `json:"typ"`
	OrderID      uint   `json:"order_id"`
	OrderUUID    string `json:"order_uuid"`
	TechnicianID uint   `json:"technician_id"`
	jwtv4.RegisteredClaims
}

type AuditTokenClaims struct {
	Typ     string                 `json:"typ"`
	Role    string                 `json:"role"`
	OrderID uint                   `json:"order_id"`
	Action  string                 `json:"action"`
	Old     map[string]interface{} `json:"old"`
	New     map[string]interface{} `json:"new"`
	jwtv4.RegisteredClaims
}

var ErrInvalidOrderToken = errors.New("invalid order token")

func orderTokenSecret() []byte {
	return []byte(os.Getenv("ORDER_TOKEN_SECRET"))
}

// SignOrderToken mints the single order token. The order uuid is generated
// before the row is written, so the token is signed exactly once with its
// final claims.
func SignOrderToken(orderID uint, orderUUID string, technicianID uint, issuedAt, expiresAt time.Time) (token string, jti string, err error) {
	jti = uuid.NewString()
	claims := OrderTokenClaims{
		Typ:          "order",
		OrderID:      orderID,
		OrderUUID:    orderUUID,
		TechnicianID: technicianID,
		RegisteredClaims: jwtv4.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwtv4.NewNumericDate(issuedAt),
			ExpiresAt: jwtv4.NewNumericDate(expiresAt),
		},
	}
	token, err = jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims).SignedString(orderTokenSecret())
	return token, jti, err
}

// SignAuditToken mints one audit token per audited action. Audit tokens do
// not expire; they exist to seal the entry, not to grant access.
func SignAuditToken(actorID uint, role string, orderID uint, action string, old, new map[string]interface{}, issuedAt time.Time) (token string, jti string, err error) {
	jti = uuid.NewString()
	if old == nil {
		old = map[string]interface{}{}
	}
	if new == nil {
		new = map[string]interface{}{}
	}
	claims := AuditTokenClaims{
		Typ:     "audit",
		Role:    role,
		OrderID: orderID,
		Action:  action,
		Old:     old,
		New:     new,
		RegisteredClaims: jwtv4.RegisteredClaims{
			ID:       jti,
			Subject:  strconv.FormatUint(uint64(actorID), 10),
			IssuedAt: jwtv4.NewNumericDate(issuedAt),
		},
	}
	token, err = jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims).SignedString(orderTokenSecret())
	return token, jti, err
}

// VerifyOrderToken parses and checks signature, algorithm, expiry and the
// "order" type discriminator. Fails closed: any defect rejects the token.
func VerifyOrderToken(token string) (*OrderTokenClaims, error) {
	claims := &OrderTokenClaims{}
	parsed, err := jwtv4.ParseWithClaims(token, claims, func(t *jwtv4.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv4.SigningMethodHMAC); !ok {
			return nil, ErrInvalidOrderToken
		}
		return orderTokenSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Typ != "order" {
		return nil, ErrInvalidOrderToken
	}
	return claims, nil
}

// SHA256Hex is the token and evidence fingerprint used for equality checks
// without re-verifying signatures.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
