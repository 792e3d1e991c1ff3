package middleware

import (
	"net/http"

	"github.com/seplitza/rejuvena-gateway/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIP, err := pkg.ReadUserIP(r)
			if err != nil {
				userIP = r.RemoteAddr
			}
			log.Tracef(" ====> request [%s] path: [%s] [ip: %s] [UA: %s]", r.Method, r.URL.Path, userIP, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r)
		})
	}
}
