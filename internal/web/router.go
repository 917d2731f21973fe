package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/zanvidmar/vitrina/web"
)

// NewRouter creates the public site router with all page routes registered.
func NewRouter(db *sql.DB) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /projects", s.Projects)
	mux.HandleFunc("GET /blog", s.Blog)
	mux.HandleFunc("GET /blog/{id}", s.BlogPost)
	mux.HandleFunc("GET /events", s.Events)
	mux.HandleFunc("GET /gallery", s.Gallery)

	return mux, nil
}
