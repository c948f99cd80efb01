package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ContentTypeValidator rejects bodies whose Content-Type is not one of
// contentTypes. Requests without a body are let through.
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteProblem(w, NewProblem(r, http.StatusUnsupportedMediaType, TypeUnsupported,
				fmt.Sprintf("unsupported content type %q, expected one of %s", contentType, strings.Join(contentTypes, ", "))))
		})
	}
}

// QueryInt reads an integer query parameter bounded to [min, max]. It writes
// a 400 problem and returns false when the value is malformed.
func QueryInt(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		WriteProblem(w, NewProblem(r, http.StatusBadRequest, TypeValidation, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}
	if n < min || n > max {
		WriteProblem(w, NewProblem(r, http.StatusBadRequest, TypeValidation, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}
	return n, true
}
