package middleware

import (
	"context"
	"net/http"
)

type queryTokenKey struct{}

// StripQueryToken removes param from the request URL before later middleware
// (request logging included) sees it. The value stays available to
// QueryToken.
func StripQueryToken(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			if !query.Has(param) {
				next.ServeHTTP(w, r)
				return
			}

			token := query.Get(param)
			query.Del(param)

			u := *r.URL
			u.RawQuery = query.Encode()

			r = r.WithContext(context.WithValue(r.Context(), queryTokenKey{}, token))
			r.URL = &u
			r.RequestURI = u.RequestURI()

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// QueryToken returns the token captured by StripQueryToken. It has the
// signature jwtauth.Verify expects.
func QueryToken(r *http.Request) string {
	token, _ := r.Context().Value(queryTokenKey{}).(string)
	return token
}
