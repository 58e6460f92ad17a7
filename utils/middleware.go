package utils

import (
	"strconv"

	"github.com/peaceghost-hub/EasyAccomodation/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDMiddleware guards routes with an {id} path segment: the caller must
// be that user, or an admin.
func UserIDMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	id := ctx.Params().Get("id")

	if claims.Role != models.RoleAdmin && strconv.FormatUint(uint64(claims.ID), 10) != id {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// UserIDFromTokenMiddleware is for routes with no {id} param; handlers read
// the acting user straight from the verified claims.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	if _, ok := jwt.Get(ctx).(*AccessToken); !ok {
		ctx.StatusCode(iris.StatusUnauthorized)
		return
	}
	ctx.Next()
}

func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != models.RoleAdmin {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "admin access required")
		return
	}
	ctx.Next()
}

// HouseOwnerOnlyMiddleware grants house owners and admins.
func HouseOwnerOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != models.RoleHouseOwner && claims.Role != models.RoleAdmin {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "house owner access required")
		return
	}
	ctx.Next()
}
