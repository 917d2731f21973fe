package blob

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestUploadReadRemove(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upload(BucketGallery, "a.webp", []byte("img")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	data, err := s.Read(BucketGallery, "a.webp")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "img" {
		t.Errorf("expected 'img', got %q", data)
	}

	if err := s.Remove(BucketGallery, "a.webp"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Read(BucketGallery, "a.webp"); err == nil {
		t.Error("expected read of removed object to fail")
	}
}

func TestUploadNeverOverwrites(t *testing.T) {
	s := newTestStore(t)

	s.Upload(BucketBlogs, "a.webp", []byte("one"))
	if err := s.Upload(BucketBlogs, "a.webp", []byte("two")); err == nil {
		t.Fatal("expected second upload of same name to fail")
	}

	data, _ := s.Read(BucketBlogs, "a.webp")
	if string(data) != "one" {
		t.Errorf("expected original content preserved, got %q", data)
	}
}

func TestUploadValidation(t *testing.T) {
	s := newTestStore(t)

	if err := s.Upload("not-a-bucket", "a.webp", nil); err == nil {
		t.Error("expected unknown bucket to be rejected")
	}
	if err := s.Upload(BucketSkills, "../escape.webp", nil); err == nil {
		t.Error("expected path traversal name to be rejected")
	}
	if err := s.Upload(BucketSkills, "", nil); err == nil {
		t.Error("expected empty name to be rejected")
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	s := newTestStore(t)

	url := s.PublicURL(BucketProjects, "x.webp")
	if url != "/media/project-images/x.webp" {
		t.Errorf("unexpected public URL %q", url)
	}

	bucket, name, ok := s.ParsePublicURL(url)
	if !ok || bucket != BucketProjects || name != "x.webp" {
		t.Errorf("expected round trip, got %q %q %v", bucket, name, ok)
	}

	for _, bad := range []string{
		"https://elsewhere.example/media/project-images/x.webp",
		"/media/unknown-bucket/x.webp",
		"/media/project-images/",
		"/other/project-images/x.webp",
	} {
		if _, _, ok := s.ParsePublicURL(bad); ok {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestNewObjectName(t *testing.T) {
	name := NewObjectName(".webp")
	if !strings.HasSuffix(name, ".webp") {
		t.Errorf("expected .webp suffix, got %q", name)
	}
	if !strings.Contains(name, "-") {
		t.Errorf("expected random-timestamp form, got %q", name)
	}
	if name == NewObjectName(".webp") {
		t.Error("expected names to be unique")
	}
}

func TestHandlerServesObjects(t *testing.T) {
	s := newTestStore(t)
	s.Upload(BucketEvents, "e.webp", []byte("event image"))

	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/" + BucketEvents + "/e.webp")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "event image" {
		t.Errorf("unexpected body %q", body)
	}

	resp, _ = http.Get(server.URL + "/" + BucketEvents + "/missing.webp")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing object, got %d", resp.StatusCode)
	}
}
