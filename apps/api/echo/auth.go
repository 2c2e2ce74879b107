package echoapi

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	errClaimsNotFoundInCtx = errors.New("claims not found in echo.Context")

	// appJWTConfig is the default JWT auth middleware config.
	// The signing key is set from the app config at server setup.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
)

// Claims represents the authorization claims transmitted via a JWT.
// The gateway only verifies them to derive the caller's scope; it never
// issues sessions (the auth service does).
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (c *Claims) logUser() core.LogUser {
	return core.LogUser{ID: c.Subject, Username: c.Username, Email: c.Email}
}

// ConfigureAuth sets the JWT verification key; must be called before the
// server starts (and before tokens are generated in tests).
func ConfigureAuth(secretKey []byte) {
	appJWTConfig.SigningKey = secretKey
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, errClaimsNotFoundInCtx
}

// getContextToken returns the raw bearer token so it can be forwarded
// upstream opaquely.
func getContextToken(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(auth, "Bearer ")
}
