package unchained

import (
	"net/http"

	"github.com/robgibbons/express-unchained/models"
)

// install registers one composed registration with chi, prefixing the
// configured base path. Pattern priority between overlapping routes is
// chi's own: static segments beat parameters beat the * catch-all,
// independent of registration order. The composer never reorders.
func (a *App) install(reg models.Registration) {
	pattern := a.config.BasePath + reg.Pattern
	handler := withRouteInfo(models.RouteInfo{Method: reg.Method, Pattern: pattern}, reg.Chain())

	switch reg.Method {
	case http.MethodGet:
		a.router.Get(pattern, handler.ServeHTTP)
	case http.MethodPost:
		a.router.Post(pattern, handler.ServeHTTP)
	case http.MethodPut:
		a.router.Put(pattern, handler.ServeHTTP)
	case http.MethodPatch:
		a.router.Patch(pattern, handler.ServeHTTP)
	case http.MethodDelete:
		a.router.Delete(pattern, handler.ServeHTTP)
	case http.MethodHead:
		a.router.Head(pattern, handler.ServeHTTP)
	case http.MethodOptions:
		a.router.Options(pattern, handler.ServeHTTP)
	default:
		a.router.MethodFunc(reg.Method, pattern, handler.ServeHTTP)
	}
}

// withRouteInfo makes the matched registration visible to the whole chain,
// middleware included, via the request context.
func withRouteInfo(info models.RouteInfo, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := models.NewContextWithRouteInfo(r.Context(), info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
