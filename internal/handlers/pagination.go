package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ParsePage reads the 1-based ?page= query parameter. Missing, non-integer and
// values below 1 fall back to page 1.
func ParsePage(c *gin.Context) int {
	var page int
	if err := runtime.BindQueryParameter("form", true, false, "page", c.Request.URL.Query(), &page); err != nil {
		return 1
	}
	if page < 1 {
		return 1
	}
	return page
}

// parseIDParam binds an integer path parameter; ok is false when it is not an integer
func parseIDParam(c *gin.Context, name string) (int, bool) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return 0, false
	}
	return id, true
}
