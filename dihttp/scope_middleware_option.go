package dihttp

// ScopeMiddlewareOption is an option used to configure the middleware when calling [RequestScopeMiddleware].
type ScopeMiddlewareOption interface {
	applyScopeMiddleware(*scopeMiddleware)
}

type scopeMiddlewareOption func(*scopeMiddleware)

func (o scopeMiddlewareOption) applyScopeMiddleware(m *scopeMiddleware) {
	o(m)
}

// WithScopeSetup adds funcs that are called with each request injector before the next
// handler runs. They are called in order, and the first error stops the request.
func WithScopeSetup(fns ...ScopeSetup) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) {
		m.setup = append(m.setup, fns...)
	})
}

// WithSetupErrorHandler sets the handler for errors returned by a [ScopeSetup].
//
// A nil handler ignores the error and writes no response.
func WithSetupErrorHandler(fn SetupErrorHandler) ScopeMiddlewareOption {
	return scopeMiddlewareOption(func(m *scopeMiddleware) {
		m.errHandler = fn
	})
}
