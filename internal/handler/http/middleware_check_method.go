package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

var routedMethods = []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete}

// CheckHTTPMethod is the MethodNotAllowed handler of router. It answers 405
// with an Allow header listing the methods the path does support.
func CheckHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range routedMethods {
			if router.Match(chi.NewRouteContext(), method, r.URL.Path) {
				allowed = append(allowed, method)
			}
		}

		if len(allowed) == 0 {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
