package ginext

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/validation"
)

const (
	// ScopeKey is the gin context key the request scope is stored under.
	ScopeKey = "dikit.scope"
	// RequestIDKey is the gin context key the request id is stored under.
	RequestIDKey = "request_id"

	requestIDHeader = "X-Request-Id"
)

// RequestID injects a unique X-Request-Id header into every request and
// response. A valid inbound UUID is kept; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := validation.ValidateUUID(RequestIDKey, id); err != nil {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Scope returns middleware that opens a request scope on container for every
// request and closes it after the handler chain completes. The scope travels
// both on the gin context and in the request's context, so container
// ResolveContext calls made anywhere below the middleware share it.
//
// Scopes open in events-only mode: event providers fire on open, other
// request-scoped resources are created on first resolution. Pass options to
// change that.
func Scope(container *di.Container, opts ...di.RequestOption) gin.HandlerFunc {
	if len(opts) == 0 {
		opts = []di.RequestOption{di.EventsOnly()}
	}
	return func(c *gin.Context) {
		ctx, rs, err := container.OpenRequestContext(c.Request.Context(), opts...)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(ScopeKey, rs)

		defer func() {
			if err := rs.CloseContext(ctx); err != nil {
				logger.Error("closing request scope", logger.Fields(
					logger.FieldError, err.Error(),
					logger.FieldScopeID, rs.ID(),
					"path", c.Request.URL.Path,
				))
			}
		}()
		c.Next()
	}
}

// Install registers the standard middleware chain on engine: panic recovery,
// request ids and a request scope per request. Options are passed through to
// Scope.
func Install(engine *gin.Engine, container *di.Container, opts ...di.RequestOption) {
	engine.Use(Recovery(), RequestID(), Scope(container, opts...))
}

// FromContext returns the request scope opened by the Scope middleware.
func FromContext(c *gin.Context) (*di.RequestScope, bool) {
	v, ok := c.Get(ScopeKey)
	if !ok {
		return nil, false
	}
	rs, ok := v.(*di.RequestScope)
	return rs, ok
}

// Resolve resolves iface from the request's scope with type safety. It fails
// with a SCOPE_NOT_STARTED error when the Scope middleware is not installed.
func Resolve[T any](c *gin.Context, iface di.Interface) (T, error) {
	rs, ok := FromContext(c)
	if !ok {
		var zero T
		return zero, errors.ScopeNotStarted(di.Request.String())
	}
	return di.ResolveScoped[T](rs, iface)
}

// AbortWithError writes err as a JSON error response with its recommended
// HTTP status and aborts the handler chain.
func AbortWithError(c *gin.Context, err error) {
	status := errors.StatusOf(err)
	if de, ok := errors.AsError(err); ok {
		c.AbortWithStatusJSON(status, de.ToResponse())
		return
	}
	c.AbortWithStatusJSON(status, errors.Internal(err).ToResponse())
}

// Recovery returns middleware that recovers from handler panics, logs the
// panic and responds with a JSON 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", logger.Fields(
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.Internal(nil).ToResponse())
			}
		}()
		c.Next()
	}
}
