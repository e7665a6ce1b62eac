package middleware

import (
	"errors"
	"fmt"
	"strings"

	"quest-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// VerifyAccessToken разбирает и проверяет подпись access-токена (HMAC).
func VerifyAccessToken(tokenString, secret string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", models.ErrTokenInvalid, t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %s", models.ErrTokenInvalid, err.Error())
		}
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// Auth проверяет Bearer-токен и кладет UserID/Roles в контекст запроса.
func Auth(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
			abortWithError(c, models.ErrTokenInvalid)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Warn("Invalid Authorization header format", zap.String("path", c.Request.URL.Path))
			abortWithError(c, models.ErrTokenMalformed)
			return
		}

		claims, err := VerifyAccessToken(parts[1], jwtSecret)
		if err != nil {
			log.Warn("Access token verification failed", zap.Error(err))
			abortWithError(c, err)
			return
		}

		c.Set(string(models.UserContextKey), claims.UserID)
		c.Set(string(models.RolesContextKey), claims.Roles)
		log.Debug("User authorized", zap.String("userID", claims.UserID.String()))
		c.Next()
	}
}

// RequireAdmin пропускает дальше только пользователей с ролью admin.
// Должен стоять ПОСЛЕ Auth.
func RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AdminMiddleware")
	return func(c *gin.Context) {
		rolesVal, ok := c.Get(string(models.RolesContextKey))
		roles, _ := rolesVal.([]string)
		if !ok || !models.HasRole(roles, models.RoleAdmin) {
			log.Warn("Admin role required",
				zap.String("path", c.Request.URL.Path),
				zap.Strings("roles", roles))
			abortWithError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}
