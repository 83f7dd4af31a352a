package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/user"
)

var (
	contextPrincipalKey = "principal"
	contextClaimsKey    = "claims"

	errRefreshExpired = core.NewAuthenticationError("Session has expired. Please log in again.")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	UserID       string    `json:"userId"`
	Role         core.Role `json:"role"`
	Email        string    `json:"email"`
}

func (c Claims) Principal() core.Principal {
	return core.Principal{UserID: c.UserID, Role: c.Role, Email: c.Email}
}

func GetUserClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    core.Conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(core.Conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		UserID:       usr.ID,
		Role:         usr.Role,
		Email:        usr.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString([]byte(core.Conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(core.Conf.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, core.ErrInvalidToken
	}
	return claims, nil
}

// requestToken reads the bearer header first, then the session cookie.
func requestToken(ctx echo.Context) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimSpace(auth[len("Bearer "):]); token != "" {
			return token
		}
	}
	if cookie, err := ctx.Cookie(core.Conf.Server.TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// authMiddleware authenticates the request and only lets roles through.
// No roles means any authenticated principal.
func authMiddleware(roles ...core.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := requestToken(ctx)
			if token == "" {
				return core.ErrAuthRequired
			}
			claims, err := parseToken(token)
			if err != nil {
				return err
			}

			p := claims.Principal()
			if !p.HasAnyRole(roles...) {
				return core.NewRoleError(roles...)
			}
			ctx.Set(contextClaimsKey, *claims)
			ctx.Set(contextPrincipalKey, p)
			return next(ctx)
		}
	}
}

func getPrincipal(ctx echo.Context) core.Principal {
	p, _ := ctx.Get(contextPrincipalKey).(core.Principal)
	return p
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(Claims); ok {
		return claims, nil
	}
	return Claims{}, core.ErrAuthRequired
}

func refreshToken(ctx echo.Context, svc user.Service) (string, user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", user.User{}, err
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID)
	if err != nil {
		if core.IsNotFound(err) {
			return "", user.User{}, core.ErrInvalidToken
		}
		return "", user.User{}, errors.Wrap(err, "finding user by ID")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", user.User{}, errRefreshExpired
	}

	token, err := GenerateToken(GetUserClaims(usr, claims.OrigIssuedAt))
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "generating token")
	}
	return token, usr, nil
}

func setTokenCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     core.Conf.Server.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(core.Conf.Server.JWTExpirationDelta.Seconds()),
		HttpOnly: true,
		Secure:   !core.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     core.Conf.Server.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !core.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}
