package dihttp

import (
	"net/http"

	"github.com/sectrean/nanoinject"
	"github.com/sectrean/nanoinject/dicontext"
)

// RequestProvider resolves to the [*http.Request] being served.
// It is bound by the request injector created by [RequestScopeMiddleware].
var RequestProvider = di.NewProvider[*http.Request](di.WithName("http.Request"))

// RequestScopeMiddleware creates a child of root for each request.
//
// The child has its own [di.Stack], so requests served on different goroutines never share
// an active injector. The current [*http.Request] is bound to [RequestProvider], and the child
// is stored on the request context where it can be used with [dicontext.Injector],
// [dicontext.Resolve], or [dicontext.MustResolve]. The next handler runs while the child is active,
// so [di.Provider.MustGet] in the handler, and in constructors and factories of root binders it
// resolves, sees the request bindings.
//
// Available options:
//   - [WithScopeSetup]: bind request specific providers on each request injector.
//   - [WithSetupErrorHandler]: set the handler for errors returned by a setup func.
func RequestScopeMiddleware(root *di.Injector, opts ...ScopeMiddlewareOption) func(http.Handler) http.Handler {
	mw := &scopeMiddleware{
		root: root,
	}
	mw.errHandler = mw.defaultErrorHandler

	for _, opt := range opts {
		opt.applyScopeMiddleware(mw)
	}

	return func(next http.Handler) http.Handler {
		return &scopeHandler{mw: mw, next: next}
	}
}

// ScopeSetup configures the injector created for a request.
type ScopeSetup = func(inj *di.Injector, r *http.Request) error

// SetupErrorHandler writes an error response to the client.
// It is called by the middleware when a [ScopeSetup] returns an error, and when
// [di.MustResolve] panics inside the next handler.
//
// The default handler logs the error with the root injector's logger and writes
// a 500 Internal Server Error response.
type SetupErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

type scopeMiddleware struct {
	root       *di.Injector
	setup      []ScopeSetup
	errHandler SetupErrorHandler
}

func (m *scopeMiddleware) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	log := m.root.Logger()
	log.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("error setting up HTTP request injector")

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type scopeHandler struct {
	mw   *scopeMiddleware
	next http.Handler
}

func (h *scopeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	inj := h.mw.root.NewChild(
		di.WithName("request"),
		di.WithStack(di.NewStack()),
	)

	r = r.WithContext(dicontext.WithInjector(r.Context(), inj))
	di.Bind(inj, RequestProvider).ToValue(r)

	for _, setup := range h.mw.setup {
		if err := setup(inj, r); err != nil {
			h.mw.handleError(w, r, err)
			return
		}
	}

	err := inj.Call(func() error {
		h.next.ServeHTTP(w, r)
		return nil
	})
	if err != nil {
		h.mw.handleError(w, r, err)
	}
}

func (m *scopeMiddleware) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if m.errHandler != nil {
		m.errHandler(w, r, err)
	}
}
