package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/configuration"
	"mx-social/infrastructure/logger"
)

// Auth validates the bearer token and stores user_name and guard on the
// request context for handlers downstream.
func Auth(userRepository repository.IUser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		parts := strings.Split(authorization, "Bearer ")
		if len(parts) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := parseClaims(parts[1], configuration.C.App.SecretKey)
		if err != nil || !token.Valid {
			res.ResponseMessage = describeTokenError(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		user, err := userRepository.GetByUserName(ctx.Request.Context(), claims.UserName)
		if err != nil {
			logger.GetLogger().WithField("user_name", claims.UserName).Info("Token for unknown user")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		guard := claims.Guard
		if guard == "" {
			guard = "admin"
		}
		ctx.Set("user_id", user.ID)
		ctx.Set("user_name", claims.UserName)
		ctx.Set("guard", guard)
		ctx.Next()
	}
}

func parseClaims(tokenString, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var claims model.UserClaims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
	)
	return claims, token, err
}

func describeTokenError(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}
