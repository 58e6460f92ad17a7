package utils

import "github.com/kataras/iris/v12"

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().Title(title).Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred.",
		ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(
		iris.StatusNotFound,
		"Not Found",
		"Resource not found.",
		ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(
		iris.StatusConflict,
		"Conflict",
		"Email already registered.",
		ctx)
}

// JSONError is the flat error envelope the dashboard expects.
func JSONError(ctx iris.Context, status int, code string, message string) {
	ctx.StopWithJSON(status, iris.Map{"error": code, "message": message})
}

// JSONPage wraps a list in the data/meta envelope used by admin listings.
func JSONPage(ctx iris.Context, items interface{}, page int, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data": items,
		"meta": iris.Map{
			"page":     page,
			"per_page": perPage,
			"total":    total,
		},
	})
}
