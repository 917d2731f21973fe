// Package blob stores uploaded media on disk, one directory per bucket,
// and issues the public URLs the stored objects are served under.
package blob

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media buckets, one per image-bearing collection.
const (
	BucketProjects = "project-images"
	BucketBlogs    = "blog-images"
	BucketSkills   = "skill-images"
	BucketSocials  = "social-images"
	BucketCerts    = "cert-images"
	BucketEvents   = "event-images"
	BucketGallery  = "gallery-images"
)

var buckets = map[string]bool{
	BucketProjects: true,
	BucketBlogs:    true,
	BucketSkills:   true,
	BucketSocials:  true,
	BucketCerts:    true,
	BucketEvents:   true,
	BucketGallery:  true,
}

// ValidBucket reports whether name is a known bucket.
func ValidBucket(name string) bool { return buckets[name] }

// NewObjectName returns a collision-resistant object name with the given
// extension, e.g. "3f1c...-1719830400000.webp".
func NewObjectName(ext string) string {
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixMilli(), ext)
}

// Store is a disk-backed object store.
type Store struct {
	root    string
	baseURL string
}

// NewStore opens (creating if needed) a store rooted at root. baseURL is
// the URL prefix objects are served under, without a trailing slash, e.g.
// "/media" or "https://example.com/media".
func NewStore(root, baseURL string) (*Store, error) {
	for b := range buckets {
		if err := os.MkdirAll(filepath.Join(root, b), 0755); err != nil {
			return nil, fmt.Errorf("creating bucket directory %s: %w", b, err)
		}
	}
	return &Store{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *Store) path(bucket, name string) (string, error) {
	if !ValidBucket(bucket) {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, bucket, name), nil
}

// Upload writes an object. Existing objects are never overwritten; names
// come from NewObjectName, so a collision means something is wrong.
func (s *Store) Upload(bucket, name string, data []byte) error {
	path, err := s.path(bucket, name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating object %s/%s: %w", bucket, name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing object %s/%s: %w", bucket, name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing object %s/%s: %w", bucket, name, err)
	}
	return nil
}

// Read returns an object's contents.
func (s *Store) Read(bucket, name string) ([]byte, error) {
	path, err := s.path(bucket, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading object %s/%s: %w", bucket, name, err)
	}
	return data, nil
}

// Remove deletes objects. It stops at the first failure.
func (s *Store) Remove(bucket string, names ...string) error {
	for _, name := range names {
		path, err := s.path(bucket, name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing object %s/%s: %w", bucket, name, err)
		}
	}
	return nil
}

// PublicURL returns the URL an object is served under.
func (s *Store) PublicURL(bucket, name string) string {
	return s.baseURL + "/" + bucket + "/" + name
}

// ParsePublicURL inverts PublicURL. It returns ok=false for URLs that do
// not belong to this store.
func (s *Store) ParsePublicURL(raw string) (bucket, name string, ok bool) {
	rest, found := strings.CutPrefix(raw, s.baseURL+"/")
	if !found {
		return "", "", false
	}
	bucket, name, found = strings.Cut(rest, "/")
	if !found || !ValidBucket(bucket) {
		return "", "", false
	}
	if name == "" || strings.Contains(name, "/") || name != filepath.Base(name) {
		return "", "", false
	}
	return bucket, name, true
}

// Handler serves stored objects over HTTP. Paths look like
// /{bucket}/{name}; mount it under the base URL prefix.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, name, found := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if !found {
			http.NotFound(w, r)
			return
		}
		path, err := s.path(bucket, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, path)
	})
}
