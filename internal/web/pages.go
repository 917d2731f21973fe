package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zanvidmar/vitrina/internal/model"
	"github.com/zanvidmar/vitrina/internal/store"
)

// Entry pairs a record's envelope with its decoded payload for rendering.
type Entry[T any] struct {
	Record  model.Record
	Payload T
}

// loadEntries fetches the active records of a collection and decodes
// their payloads. Records with broken payloads are logged and skipped
// rather than taking the page down.
func loadEntries[T any](ctx context.Context, db *sql.DB, collection string) ([]Entry[T], error) {
	records, err := store.SelectRecords(ctx, db, collection, store.Active)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry[T], 0, len(records))
	for _, rec := range records {
		var payload T
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			slog.Warn("skipping record with invalid payload", "collection", collection, "id", rec.ID, "error", err)
			continue
		}
		entries = append(entries, Entry[T]{Record: rec, Payload: payload})
	}
	return entries, nil
}

func (s *Server) pageData(ctx context.Context, title string) PageData {
	settings, err := store.ListSettings(ctx, s.DB)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		settings = map[string]string{}
	}
	return PageData{Title: title, Settings: settings}
}

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skills, err := loadEntries[model.Skill](ctx, s.DB, model.CollectionSkills)
	if err != nil {
		slog.Error("failed to load skills", "error", err)
	}
	experiences, err := loadEntries[model.Experience](ctx, s.DB, model.CollectionExperiences)
	if err != nil {
		slog.Error("failed to load experiences", "error", err)
	}
	certifications, err := loadEntries[model.Certification](ctx, s.DB, model.CollectionCertifications)
	if err != nil {
		slog.Error("failed to load certifications", "error", err)
	}
	socials, err := loadEntries[model.Social](ctx, s.DB, model.CollectionSocials)
	if err != nil {
		slog.Error("failed to load socials", "error", err)
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Skills         []Entry[model.Skill]
		Experiences    []Entry[model.Experience]
		Certifications []Entry[model.Certification]
		Socials        []Entry[model.Social]
	}{
		PageData:       s.pageData(ctx, "Home"),
		Skills:         skills,
		Experiences:    experiences,
		Certifications: certifications,
		Socials:        socials,
	})
}

// Projects handles GET /projects.
func (s *Server) Projects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := loadEntries[model.Project](ctx, s.DB, model.CollectionProjects)
	if err != nil {
		slog.Error("failed to load projects", "error", err)
	}

	s.Templates.Render(w, "projects.html", &struct {
		PageData
		Projects []Entry[model.Project]
	}{
		PageData: s.pageData(ctx, "Projects"),
		Projects: projects,
	})
}

// Blog handles GET /blog.
func (s *Server) Blog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := loadEntries[model.BlogPost](ctx, s.DB, model.CollectionBlogs)
	if err != nil {
		slog.Error("failed to load blog posts", "error", err)
	}

	s.Templates.Render(w, "blog.html", &struct {
		PageData
		Posts []Entry[model.BlogPost]
	}{
		PageData: s.pageData(ctx, "Blog"),
		Posts:    posts,
	})
}

// BlogPost handles GET /blog/{id}.
func (s *Server) BlogPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, err := store.GetRecord(ctx, s.DB, model.CollectionBlogs, id)
	if err != nil {
		slog.Error("failed to load blog post", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rec == nil || rec.IsArchived {
		http.NotFound(w, r)
		return
	}

	var post model.BlogPost
	if err := json.Unmarshal(rec.Payload, &post); err != nil {
		slog.Error("blog post has invalid payload", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "blog_post.html", &struct {
		PageData
		Post Entry[model.BlogPost]
	}{
		PageData: s.pageData(ctx, rec.Title),
		Post:     Entry[model.BlogPost]{Record: *rec, Payload: post},
	})
}

// Events handles GET /events.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := loadEntries[model.Event](ctx, s.DB, model.CollectionEvents)
	if err != nil {
		slog.Error("failed to load events", "error", err)
	}

	s.Templates.Render(w, "events.html", &struct {
		PageData
		Events []Entry[model.Event]
	}{
		PageData: s.pageData(ctx, "Events"),
		Events:   events,
	})
}

// Gallery handles GET /gallery.
func (s *Server) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := loadEntries[model.GalleryItem](ctx, s.DB, model.CollectionGallery)
	if err != nil {
		slog.Error("failed to load gallery", "error", err)
	}

	s.Templates.Render(w, "gallery.html", &struct {
		PageData
		Items []Entry[model.GalleryItem]
	}{
		PageData: s.pageData(ctx, "Gallery"),
		Items:    items,
	})
}
