package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"paygate-server/internal/infrastructure/config"
	otelinfra "paygate-server/internal/infrastructure/observability/otel"
)

// AuthMiddleware JWT認証ミドルウェア
// テナントとユーザーのクレームを検証してコンテキストに設定する
func AuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, errResp := parseToken(c, cfg, logger)
			if errResp != nil {
				return c.JSON(401, *errResp)
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				logger.Warn(c.Request().Context(), "Missing user_id in token claims", nil)
				return c.JSON(401, ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing user_id in token",
				})
			}

			tenantID, ok := claims["tenant_id"].(string)
			if !ok || tenantID == "" {
				logger.Warn(c.Request().Context(), "Missing tenant_id in token claims", nil)
				return c.JSON(401, ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing tenant_id in token",
				})
			}

			c.Set("user_id", userID)
			c.Set("tenant_id", tenantID)

			return next(c)
		}
	}
}

// OptionalAuthMiddleware 任意認証ミドルウェア
// トークンがあれば検証してクレームを設定し、なければゲストとして通す
// （ゲストの注文は許可されるが、Vault保存の意思は買い手特定済みの場合にのみ有効になる）
func OptionalAuthMiddleware(cfg *config.JWTConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}

			claims, errResp := parseToken(c, cfg, logger)
			if errResp != nil {
				// 提示されたトークンが不正な場合はゲスト扱いにせず拒否する
				return c.JSON(401, *errResp)
			}

			if userID, ok := claims["user_id"].(string); ok && userID != "" {
				c.Set("user_id", userID)
			}
			if tenantID, ok := claims["tenant_id"].(string); ok && tenantID != "" {
				c.Set("tenant_id", tenantID)
			}

			return next(c)
		}
	}
}

// parseToken Authorizationヘッダーのトークンを検証してクレームを返す
func parseToken(c echo.Context, cfg *config.JWTConfig, logger *otelinfra.Logger) (jwt.MapClaims, *ErrorResponse) {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn(ctx, "Missing authorization header", nil)
		return nil, &ErrorResponse{
			Error:   "unauthorized",
			Message: "Missing authorization header",
		}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.Warn(ctx, "Invalid authorization header format", nil)
		return nil, &ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid authorization header format",
		}
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	})

	if err != nil || !token.Valid {
		logger.Warn(ctx, "Invalid token", map[string]interface{}{
			"error": err,
		})
		return nil, &ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired token",
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		logger.Warn(ctx, "Invalid token claims", nil)
		return nil, &ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid token claims",
		}
	}

	return claims, nil
}
