package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/woodchen-ink/go-web-utils/iputil"
)

// AdminAuth 校验 Authorization: Bearer <token>。
// token 每次请求时读取，返回空字符串时不校验。
func AdminAuth(token func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expected := token()
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				log.Printf("[Auth] %s %s 未授权访问, IP: %s", r.Method, r.URL.Path, iputil.GetClientIP(r))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
