package api

import (
	"database/sql"
	"net/http"

	"github.com/zanvidmar/vitrina/internal/blob"
)

// NewRouter creates the admin API router with all endpoints registered.
func NewRouter(db *sql.DB, blobs *blob.Store, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	recordsHandler := &RecordsHandler{DB: db}
	uploadsHandler := &UploadsHandler{Blobs: blobs}
	configHandler := &ConfigHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Site configuration.
	mux.Handle("GET /api/config", authMW(http.HandlerFunc(configHandler.Get)))
	mux.Handle("PUT /api/config", authMW(http.HandlerFunc(configHandler.Put)))

	// Admin accounts.
	mux.Handle("GET /api/users", authMW(http.HandlerFunc(usersHandler.List)))
	mux.Handle("POST /api/users", authMW(http.HandlerFunc(usersHandler.Create)))
	mux.Handle("PUT /api/users/{id}/password", authMW(http.HandlerFunc(usersHandler.ResetPassword)))
	mux.Handle("DELETE /api/users/{id}", authMW(http.HandlerFunc(usersHandler.Delete)))

	// Media uploads.
	mux.Handle("POST /api/uploads/{bucket}", authMW(http.HandlerFunc(uploadsHandler.Upload)))
	mux.Handle("DELETE /api/uploads", authMW(http.HandlerFunc(uploadsHandler.Remove)))

	// Content collections. The handler validates the collection name
	// against the fixed set before anything touches SQL.
	mux.Handle("GET /api/collections/{collection}", authMW(http.HandlerFunc(recordsHandler.List)))
	mux.Handle("POST /api/collections/{collection}", authMW(http.HandlerFunc(recordsHandler.Create)))
	mux.Handle("GET /api/collections/{collection}/{id}", authMW(http.HandlerFunc(recordsHandler.Get)))
	mux.Handle("PUT /api/collections/{collection}/{id}", authMW(http.HandlerFunc(recordsHandler.Update)))
	mux.Handle("POST /api/collections/{collection}/archive", authMW(http.HandlerFunc(recordsHandler.Archive)))
	mux.Handle("POST /api/collections/{collection}/restore", authMW(http.HandlerFunc(recordsHandler.Restore)))
	mux.Handle("DELETE /api/collections/{collection}", authMW(http.HandlerFunc(recordsHandler.Delete)))

	return mux
}
