package managers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"

	"todo-api/internal/interfaces"
	"todo-api/internal/schemas"
	"todo-api/internal/utils"
)

// JWTMgr is the token codec. It issues access/refresh pairs, validates
// presented tokens and resolves their subject to a live user record.
type JWTMgr interface {
	GenerateJWT(user *schemas.User, tokenType string) (string, error)
	GenerateTokenPair(user *schemas.User) (*schemas.TokenPairDTO, error)
	ValidateJWT(tokenString string) (jwt.MapClaims, error)
	ResolveUser(ctx context.Context, pool interfaces.PgxPoolIface, tokenString, expectedType string) (*schemas.User, error)
	JWTMiddleware(databaseMgr DatabaseMgr) gin.HandlerFunc
}

// Sentinel conditions surfaced by ResolveUser. Callers collapse all of them
// except ErrWrongTokenType into a generic credentials failure.
var (
	ErrTokenInvalid   = errors.New("token invalid or expired")
	ErrWrongTokenType = errors.New("unexpected token type")
	ErrUserGone       = errors.New("token subject no longer exists")
)

const issuer = "todo-api"

const userByShortNameQuery = "SELECT user_id, name, surname, short_name, email, gender, base_category_id, is_admin, is_verified, is_active, password_hash, created_at FROM todo_schema.users WHERE short_name = $1"

// JWTManager signs and verifies claims with a shared HMAC-SHA256 secret.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a new JWTManager with the given secret and expiries.
func NewJWTManager(secret []byte, accessTTL, refreshTTL time.Duration) JWTMgr {
	return &JWTManager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewJWTManagerFromEnv creates a new JWTManager configured from the
// JWT_SECRET, ACCESS_TOKEN_EXPIRE_MINUTES and REFRESH_TOKEN_EXPIRE_DAYS
// environment variables.
func NewJWTManagerFromEnv() (JWTMgr, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}

	accessMinutes := envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)
	refreshDays := envInt("REFRESH_TOKEN_EXPIRE_DAYS", 30)

	return NewJWTManager(
		[]byte(secret),
		time.Duration(accessMinutes)*time.Minute,
		time.Duration(refreshDays)*24*time.Hour,
	), nil
}

// GenerateJWT generates a token of the given type for the user. The subject
// is the user's short name; access tokens additionally embed short name and
// email for claims-based display without a lookup.
func (jm *JWTManager) GenerateJWT(user *schemas.User, tokenType string) (string, error) {
	now := time.Now()

	ttl := jm.accessTTL
	if tokenType == schemas.RefreshTokenType {
		ttl = jm.refreshTTL
	}

	claims := jwt.MapClaims{
		"iss":  issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"sub":  user.ShortName,
		"type": tokenType,
	}

	if tokenType == schemas.AccessTokenType {
		claims["short_name"] = user.ShortName
		claims["email"] = user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jm.secret)
}

// GenerateTokenPair issues an access and a refresh token for the user.
func (jm *JWTManager) GenerateTokenPair(user *schemas.User) (*schemas.TokenPairDTO, error) {
	accessToken, err := jm.GenerateJWT(user, schemas.AccessTokenType)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jm.GenerateJWT(user, schemas.RefreshTokenType)
	if err != nil {
		return nil, err
	}

	return &schemas.TokenPairDTO{
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateJWT validates the given JWT and returns the claims if valid.
// Malformed, tampered and expired tokens all fail here.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}

		return jm.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// ResolveUser decodes the token, checks the type discriminator against the
// expectation and resolves the subject to a live user record. A valid token
// whose subject has since been deleted fails with ErrUserGone.
func (jm *JWTManager) ResolveUser(ctx context.Context, pool interfaces.PgxPoolIface, tokenString, expectedType string) (*schemas.User, error) {
	claims, err := jm.ValidateJWT(tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != expectedType {
		return nil, ErrWrongTokenType
	}

	shortName, _ := claims["sub"].(string)
	if shortName == "" {
		return nil, ErrTokenInvalid
	}

	user := &schemas.User{}
	row := pool.QueryRow(ctx, userByShortNameQuery, shortName)
	if err := row.Scan(&user.ID, &user.Name, &user.Surname, &user.ShortName, &user.Email, &user.Gender,
		&user.BaseCategoryID, &user.IsAdmin, &user.IsVerified, &user.IsActive, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserGone
		}

		return nil, err
	}

	return user, nil
}

// JWTMiddleware guards a route group with bearer access-token auth and
// stores the resolved user in the gin context.
func (jm *JWTManager) JWTMiddleware(databaseMgr DatabaseMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		user, err := jm.ResolveUser(c, databaseMgr.GetPool(), tokenString, schemas.AccessTokenType)
		if err != nil {
			customErr := schemas.InvalidCredentials
			if errors.Is(err, ErrWrongTokenType) {
				customErr = schemas.InvalidTokenType
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *customErr})
			return
		}

		c.Set(utils.UserKey.String(), user)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return parsed
}
