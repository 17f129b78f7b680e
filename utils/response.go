package utils

import (
	"fmt"

	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func pageLink(path string, page, perPage int) string {
	return fmt.Sprintf("%s?page=%d&per_page=%d", path, page, perPage)
}

// JSONPage writes a paged collection with self/prev/next links derived from
// the request path and the same query parameters the handlers read.
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	links := iris.Map{"self": pageLink(ctx.Path(), page, perPage)}
	if page > 1 {
		links["prev"] = pageLink(ctx.Path(), page-1, perPage)
	}
	if int64(page)*int64(perPage) < total {
		links["next"] = pageLink(ctx.Path(), page+1, perPage)
	}
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		"links": links,
	})
}

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
