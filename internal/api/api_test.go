package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/zanvidmar/vitrina/internal/blob"
	"github.com/zanvidmar/vitrina/internal/db"
	"github.com/zanvidmar/vitrina/internal/model"
	"github.com/zanvidmar/vitrina/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	database := db.NewTestDB(t)

	blobs, err := blob.NewStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("creating blob store: %v", err)
	}

	router := NewRouter(database, blobs, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash))

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/collections/skills")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/collections/skills", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with revoked token, got %d", resp.StatusCode)
	}
}

func TestRecordsCRUDFlow(t *testing.T) {
	server, token := setupTestServer(t)
	base := server.URL + "/api/collections/projects"

	// Create.
	req, _ := authRequest("POST", base, token, map[string]any{
		"title":   "Portfolio Site",
		"payload": map[string]any{"description": "This very site", "tags": []string{"go"}},
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.Record
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	// Get.
	req, _ = authRequest("GET", fmt.Sprintf("%s/%d", base, created.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Update.
	req, _ = authRequest("PUT", fmt.Sprintf("%s/%d", base, created.ID), token, map[string]any{
		"title":      "Portfolio Site v2",
		"sort_order": 1,
	})
	resp, _ = http.DefaultClient.Do(req)
	var updated model.Record
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Title != "Portfolio Site v2" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}

	// List.
	req, _ = authRequest("GET", base, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var list []model.Record
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list) != 1 {
		t.Errorf("expected 1 record, got %d", len(list))
	}
}

func TestArchiveRestoreDeleteFlow(t *testing.T) {
	server, token := setupTestServer(t)
	base := server.URL + "/api/collections/events"

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		req, _ := authRequest("POST", base, token, map[string]any{"title": title})
		resp, _ := http.DefaultClient.Do(req)
		var rec model.Record
		json.NewDecoder(resp.Body).Decode(&rec)
		resp.Body.Close()
		ids = append(ids, rec.ID)
	}

	// Bulk archive a and b.
	req, _ := authRequest("POST", base+"/archive", token, map[string]any{"ids": ids[:2]})
	resp, _ := http.DefaultClient.Do(req)
	var archived map[string]int
	json.NewDecoder(resp.Body).Decode(&archived)
	resp.Body.Close()
	if archived["archived"] != 2 {
		t.Errorf("expected 2 archived, got %d", archived["archived"])
	}

	// Default listing shows only active records.
	req, _ = authRequest("GET", base, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var active []model.Record
	json.NewDecoder(resp.Body).Decode(&active)
	resp.Body.Close()
	if len(active) != 1 || active[0].Title != "c" {
		t.Errorf("expected only 'c' active, got %+v", active)
	}

	// Restore a.
	req, _ = authRequest("POST", base+"/restore", token, map[string]any{"ids": ids[:1]})
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()

	// Delete b permanently.
	req, _ = authRequest("DELETE", base, token, map[string]any{"ids": ids[1:2]})
	resp, _ = http.DefaultClient.Do(req)
	var deleted map[string]int
	json.NewDecoder(resp.Body).Decode(&deleted)
	resp.Body.Close()
	if deleted["deleted"] != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted["deleted"])
	}

	req, _ = authRequest("GET", base+"?archived=all", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var all []model.Record
	json.NewDecoder(resp.Body).Decode(&all)
	resp.Body.Close()
	if len(all) != 2 {
		t.Errorf("expected 2 records after delete, got %d", len(all))
	}
}

func TestUnknownCollectionIs404(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/collections/nope", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", resp.StatusCode)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("PUT", server.URL+"/api/config", token, map[string]string{
		"site_title": "Vitrina",
		"tagline":    "Things I've made",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	req, _ = authRequest("GET", server.URL+"/api/config", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var settings map[string]string
	json.NewDecoder(resp.Body).Decode(&settings)
	resp.Body.Close()
	if settings["site_title"] != "Vitrina" {
		t.Errorf("expected stored site_title, got %q", settings["site_title"])
	}
	if _, ok := settings["jwt_secret"]; ok {
		t.Error("jwt_secret must never be exposed")
	}
}

func uploadImage(t *testing.T, server *httptest.Server, token, bucket string, fields map[string]string, imageData []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if imageData != nil {
		fw, _ := mw.CreateFormFile("image", "photo.png")
		fw.Write(imageData)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/uploads/"+bucket, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload request: %v", err)
	}
	return resp
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestUploadEndToEnd(t *testing.T) {
	server, token := setupTestServer(t)

	resp := uploadImage(t, server, token, blob.BucketGallery, map[string]string{
		"crop_x": "0", "crop_y": "0", "crop_w": "400", "crop_h": "300",
	}, testPNG(t, 600, 400))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		URL                string `json:"url"`
		OriginalSizeBytes  int64  `json:"original_size_bytes"`
		ConvertedSizeBytes int64  `json:"converted_size_bytes"`
		SavingsPercent     int    `json:"savings_percent"`
		Width              int    `json:"width"`
		Height             int    `json:"height"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	if !strings.HasPrefix(result.URL, "/media/gallery-images/") || !strings.HasSuffix(result.URL, ".webp") {
		t.Errorf("unexpected public URL %q", result.URL)
	}
	if result.Width != 400 || result.Height != 300 {
		t.Errorf("expected 400x300 crop, got %dx%d", result.Width, result.Height)
	}
	if result.OriginalSizeBytes == 0 || result.ConvertedSizeBytes == 0 {
		t.Error("expected size statistics")
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	server, token := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	req, _ := http.NewRequest("POST", server.URL+"/api/uploads/"+blob.BucketBlogs, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-image, got %d", resp.StatusCode)
	}
}

func TestUploadUnknownBucket(t *testing.T) {
	server, token := setupTestServer(t)

	resp := uploadImage(t, server, token, "secret-stash", nil, testPNG(t, 10, 10))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown bucket, got %d", resp.StatusCode)
	}
}

func TestUploadRemoveBestEffort(t *testing.T) {
	server, token := setupTestServer(t)

	// Upload something real first.
	resp := uploadImage(t, server, token, blob.BucketSkills, nil, testPNG(t, 100, 100))
	var result struct {
		URL string `json:"url"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()

	req, _ := authRequest("DELETE", server.URL+"/api/uploads", token, map[string]string{"url": result.URL})
	resp, _ = http.DefaultClient.Do(req)
	var removed map[string]bool
	json.NewDecoder(resp.Body).Decode(&removed)
	resp.Body.Close()
	if !removed["removed"] {
		t.Error("expected stored object to be removed")
	}

	// Foreign URLs are not an error.
	req, _ = authRequest("DELETE", server.URL+"/api/uploads", token, map[string]string{"url": "https://elsewhere.example/x.webp"})
	resp, _ = http.DefaultClient.Do(req)
	json.NewDecoder(resp.Body).Decode(&removed)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || removed["removed"] {
		t.Errorf("expected OK with removed=false for foreign URL, got %d %v", resp.StatusCode, removed)
	}
}

func TestReCropFromSourceURL(t *testing.T) {
	server, token := setupTestServer(t)

	resp := uploadImage(t, server, token, blob.BucketProjects, nil, testPNG(t, 800, 600))
	var first struct {
		URL string `json:"url"`
	}
	json.NewDecoder(resp.Body).Decode(&first)
	resp.Body.Close()

	// Re-enter the pipeline from the stored asset.
	resp = uploadImage(t, server, token, blob.BucketProjects, map[string]string{
		"source_url": first.URL,
		"crop_x":     "0", "crop_y": "0", "crop_w": "400", "crop_h": "300",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 re-cropping stored asset, got %d", resp.StatusCode)
	}

	var second struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	json.NewDecoder(resp.Body).Decode(&second)
	if second.URL == first.URL {
		t.Error("expected a fresh object name for the re-crop")
	}
	if second.Width != 400 || second.Height != 300 {
		t.Errorf("expected 400x300, got %dx%d", second.Width, second.Height)
	}
}

func TestUsersAdministration(t *testing.T) {
	server, token := setupTestServer(t)

	// Cannot delete the only account.
	req, _ := authRequest("DELETE", server.URL+"/api/users/1", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 deleting last admin, got %d", resp.StatusCode)
	}

	// Create a second account, then deleting works.
	req, _ = authRequest("POST", server.URL+"/api/users", token, map[string]string{
		"username": "editor", "password": "pw",
	})
	resp, _ = http.DefaultClient.Do(req)
	var created model.User
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	req, _ = authRequest("DELETE", fmt.Sprintf("%s/api/users/%d", server.URL, created.ID), token, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 deleting second account, got %d", resp.StatusCode)
	}
}
