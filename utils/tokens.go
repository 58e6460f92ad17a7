package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/peaceghost-hub/EasyAccomodation/config"
	"github.com/peaceghost-hub/EasyAccomodation/models"
	"github.com/peaceghost-hub/EasyAccomodation/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	accessTokenMaxAge  = 15 * time.Minute
	refreshTokenMaxAge = 30 * 24 * time.Hour
	emailTokenMaxAge   = 48 * time.Hour
)

type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

type EmailVerificationToken struct {
	ID uint `json:"ID"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func refreshKey(userID uint) string {
	return fmt.Sprintf("refresh:%d", userID)
}

// CreateTokenPair signs an access/refresh pair and records the refresh token
// in Redis so it can be revoked before its natural expiry.
func CreateTokenPair(userID uint, role string) (jwt.TokenPair, error) {
	accessSigner := jwt.NewSigner(jwt.HS256, []byte(config.C.AccessTokenSecret), accessTokenMaxAge)
	accessToken, err := accessSigner.Sign(AccessToken{ID: userID, Role: role})
	if err != nil {
		return jwt.TokenPair{}, err
	}

	refreshSigner := jwt.NewSigner(jwt.HS256, []byte(config.C.RefreshTokenSecret), refreshTokenMaxAge)
	refreshToken, err := refreshSigner.Sign(jwt.Claims{
		Subject: strconv.FormatUint(uint64(userID), 10),
	})
	if err != nil {
		return jwt.TokenPair{}, err
	}

	if storage.Redis != nil {
		storage.Redis.Set(context.Background(), refreshKey(userID), string(refreshToken), refreshTokenMaxAge)
	}

	return jwt.TokenPair{
		AccessToken:  json.RawMessage(strconv.Quote(string(accessToken))),
		RefreshToken: json.RawMessage(strconv.Quote(string(refreshToken))),
	}, nil
}

// RevokeRefreshToken drops the stored refresh token, ending the session.
func RevokeRefreshToken(userID uint) {
	if storage.Redis != nil {
		storage.Redis.Del(context.Background(), refreshKey(userID))
	}
}

// CreateEmailVerificationToken signs the short-lived token embedded in the
// verification link mailed to a new account.
func CreateEmailVerificationToken(userID uint) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, []byte(config.C.EmailTokenSecret), emailTokenMaxAge)
	token, err := signer.Sign(EmailVerificationToken{ID: userID})
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The
// refresh verifier middleware has already validated the signature; here we
// check it is still the one on record and re-issue.
func RefreshToken(ctx iris.Context) {
	claims := jwt.Get(ctx).(*jwt.Claims)

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid refresh token.", ctx)
		return
	}

	if storage.Redis != nil {
		stored, err := storage.Redis.Get(context.Background(), refreshKey(uint(userID))).Result()
		if err != nil || stored == "" {
			CreateError(iris.StatusUnauthorized, "Unauthorized", "Session expired, log in again.", ctx)
			return
		}
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		CreateNotFound(ctx)
		return
	}

	tokenPair, err := CreateTokenPair(user.ID, user.Role)
	if err != nil {
		CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
