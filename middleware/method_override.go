package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideParam is the query parameter HTML forms use to tunnel
// PUT, PATCH and DELETE through POST, e.g. action="/listings/42?_method=DELETE".
const MethodOverrideParam = "_method"

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride rewrites the method of POST requests before routing. It has
// to wrap the gin engine rather than run inside it because gin picks the
// route before any middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := strings.ToUpper(r.URL.Query().Get(MethodOverrideParam)); overridableMethods[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
