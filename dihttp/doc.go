/*
Package dihttp provides HTTP middleware that creates a child [di.Injector] for each request.

Example:

	package main

	import (
		"net/http"

		"github.com/go-chi/chi/v5"

		"github.com/sectrean/nanoinject"
		"github.com/sectrean/nanoinject/dicontext"
		"github.com/sectrean/nanoinject/dihttp"
	)

	var GreeterProvider = di.NewProvider[*Greeter](di.WithName("Greeter"))

	func main() {
		root := di.NewInjector(di.WithName("root"))
		di.Bind(root, GreeterProvider).ToFactory(NewGreeter).AsSingleton()

		r := chi.NewRouter()
		r.Use(dihttp.RequestScopeMiddleware(root))
		r.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
			g := dicontext.MustResolve(r.Context(), GreeterProvider)
			g.Greet(w, r)
		})

		http.ListenAndServe(":8080", r)
	}
*/
package dihttp
