package logging

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger is chi's request logger writing through Logger instead of
// the stdlib log package.
func RequestLogger() func(http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{
		Logger:  Logger,
		NoColor: true,
	})
}
