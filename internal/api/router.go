package api

import (
	"net/http"

	"staged/internal/logging"
	"staged/internal/middleware"

	"github.com/klauspost/compress/gzhttp"
)

// NewRouter wires every endpoint behind the request middleware. Responses
// are gzip-compressed when the client accepts it.
func NewRouter(diffs *DiffHandler, reviews *ReviewHandler, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthCheck)

	mux.HandleFunc("GET /api/diff", diffs.Get)
	mux.HandleFunc("GET /api/files", diffs.Files)
	mux.HandleFunc("GET /api/refs", diffs.Refs)
	mux.HandleFunc("GET /api/status", diffs.Status)
	mux.HandleFunc("POST /api/files/stage", diffs.Stage)
	mux.HandleFunc("POST /api/files/unstage", diffs.Unstage)
	mux.HandleFunc("POST /api/files/discard", diffs.Discard)

	mux.HandleFunc("GET /api/reviews", reviews.Get)
	mux.HandleFunc("DELETE /api/reviews", reviews.Delete)
	mux.HandleFunc("POST /api/reviews/comments", reviews.AddComment)
	mux.HandleFunc("DELETE /api/reviews/comments/{id}", reviews.DeleteComment)
	mux.HandleFunc("POST /api/reviews/reviewed", reviews.MarkReviewed)
	mux.HandleFunc("DELETE /api/reviews/reviewed", reviews.UnmarkReviewed)
	mux.HandleFunc("POST /api/reviews/edits", reviews.AddEdit)

	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recover(logger),
	)
	return gzhttp.GzipHandler(handler)
}
