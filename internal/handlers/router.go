// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-ragchat/internal/middleware"
	"github.com/iyunix/go-ragchat/internal/ratelimit"
)

// NewRouter wires every route. limiter guards the endpoints that call the
// language model and may be nil.
func NewRouter(chatHandler *ChatHandler, pageHandler *PageHandler, limiter *ratelimit.MemoryRateLimiter) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RecoverPanic)
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware)

	limited := func(name string, h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return middleware.RateLimitMiddleware(limiter, name)(h)
	}

	// --- Public Routes ---
	r.PathPrefix("/static/").Handler(StaticHandler())
	r.HandleFunc("/health", Health).Methods("GET")
	r.HandleFunc("/api/log", LogFrontendEvent).Methods("POST")

	// --- Pages ---
	r.HandleFunc("/", pageHandler.ShowIndexPage).Methods("GET")
	r.HandleFunc("/chat/new", pageHandler.NewChat).Methods("POST")
	r.HandleFunc("/chat/{id:[0-9]+}", pageHandler.ShowChatPage).Methods("GET")
	r.HandleFunc("/chat/{id:[0-9]+}/delete", pageHandler.DeleteChat).Methods("POST")
	r.Handle("/chat/{id:[0-9]+}/entry", limited("entry", pageHandler.TalkToModel)).Methods("POST")
	r.Handle("/chat-stream/{id:[0-9]+}", limited("chat-stream", chatHandler.StreamChatLegacy)).Methods("GET")

	// --- JSON API ---
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.GetChat).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.GetChatMessages).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/clear", chatHandler.ClearHistory).Methods("POST")
	api.Handle("/chats/{id:[0-9]+}/messages", limited("messages", chatHandler.HandleChatMessage)).Methods("POST")
	api.Handle("/chats/{id:[0-9]+}/stream", limited("stream", chatHandler.StreamChatSSE)).Methods("GET")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHandler.ShowErrorPage(w, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHandler.ShowErrorPage(w, http.StatusMethodNotAllowed, "Method Not Allowed", "The method is not allowed for this resource.")
	})

	return r
}
