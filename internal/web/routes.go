package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marga/uploader-devserver/internal/logging"
)

// NewRouter builds the handler tree: access log, then CORS, then the static
// file handler on a catch-all route.
//
// SkipClean keeps the raw path so traversal attempts reach the static handler
// and get a 403 instead of being redirected to a cleaned path. Every method
// is routed so that CORS headers also land on 405 responses.
func NewRouter(cfg ServerConfig, logger logging.Logger) *mux.Router {
	if logger == nil {
		logger = logging.NoopLogger{}
	}

	static := NewStaticHandler(cfg.BaseDir, cfg.DirListing, logger)

	r := mux.NewRouter()
	r.SkipClean(true)
	r.Use(func(next http.Handler) http.Handler { return WithAccessLog(logger, next) })
	r.Use(WithCORS)
	r.PathPrefix("/").Handler(static)

	// Requests the catch-all does not match (such as "OPTIONS *") bypass
	// router middleware, so the fallbacks wrap themselves.
	r.NotFoundHandler = WithAccessLog(logger, WithCORS(http.NotFoundHandler()))
	r.MethodNotAllowedHandler = WithAccessLog(logger, WithCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed)
	})))
	return r
}
