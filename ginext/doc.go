// Package ginext integrates the dikit container with Gin.
//
// The [Scope] middleware opens a request scope for every HTTP request and
// closes it when the response is written, releasing request-scoped resources
// in reverse acquisition order. Handlers resolve dependencies through the
// scope:
//
//	r := gin.New()
//	r.Use(ginext.RequestID(), ginext.Scope(container))
//	r.GET("/greet", func(c *gin.Context) {
//	    greeter, err := ginext.Resolve[*Greeter](c, "greeter")
//	    if err != nil {
//	        ginext.AbortWithError(c, err)
//	        return
//	    }
//	    c.String(http.StatusOK, greeter.Greet())
//	})
package ginext
