// Package rest wires the HTTP surface: account and message endpoints plus
// the websocket upgrade route.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"dm-lab/contract"
	"dm-lab/observability"
)

// Server assembles the router out of the handlers.
type Server struct {
	router *mux.Router
}

func NewServer(log *slog.Logger,
	authHandler *AuthHandler,
	messageHandler *MessageHandler,
	wsHandler http.Handler,
	monitor *observability.Monitor,
	registry contract.IRegistry,
	rps int) *Server {

	router := mux.NewRouter()
	router.Use(LoggingMiddleware(log))
	router.Use(RateLimitMiddleware(rps))

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, monitor.GetLatest(len(registry.OnlineUsers())))
	}).Methods(http.MethodGet)

	router.Handle("/ws", wsHandler)

	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	protectedAuth := router.PathPrefix("/api/auth").Subrouter()
	protectedAuth.Use(AuthMiddleware)
	protectedAuth.HandleFunc("/check", authHandler.Check).Methods(http.MethodGet)
	protectedAuth.HandleFunc("/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	protectedAuth.HandleFunc("/account", authHandler.DeleteAccount).Methods(http.MethodDelete)

	messages := router.PathPrefix("/api/messages").Subrouter()
	messages.Use(AuthMiddleware)
	messages.HandleFunc("/users", messageHandler.Users).Methods(http.MethodGet)
	messages.HandleFunc("/search", messageHandler.Search).Methods(http.MethodGet)
	messages.HandleFunc("/receipt", messageHandler.UpdateReceipt).Methods(http.MethodPatch)
	messages.HandleFunc("/send/{id}", messageHandler.Send).Methods(http.MethodPost)
	messages.HandleFunc("/chat/{id}", messageHandler.DeleteChat).Methods(http.MethodDelete)
	messages.HandleFunc("/{id}", messageHandler.Conversation).Methods(http.MethodGet)

	return &Server{router: router}
}

func (s *Server) Router() http.Handler {
	return s.router
}
