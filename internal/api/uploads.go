package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zanvidmar/vitrina/internal/blob"
	"github.com/zanvidmar/vitrina/internal/imaging"
)

// UploadsHandler runs the image pipeline and manages stored media.
type UploadsHandler struct {
	Blobs *blob.Store
}

type uploadResponse struct {
	URL                string `json:"url"`
	OriginalSizeBytes  int64  `json:"original_size_bytes"`
	ConvertedSizeBytes int64  `json:"converted_size_bytes"`
	SavingsPercent     int    `json:"savings_percent"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
}

// Upload handles POST /api/uploads/{bucket}. The multipart form carries
// either an "image" file or a "source_url" naming an already stored object
// (the re-crop flow), plus an optional crop rectangle (crop_x, crop_y,
// crop_w, crop_h — all four or none, in image pixel coordinates).
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	bucket := r.PathValue("bucket")
	if !blob.ValidBucket(bucket) {
		jsonError(w, http.StatusNotFound, "unknown bucket")
		return
	}

	// A little headroom over the pipeline's own ceiling for form framing.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxInputBytes+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	data, filename, mime, ok := h.readSource(w, r)
	if !ok {
		return
	}

	crop, err := parseCrop(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := imaging.Process(data, filename, mime, crop, imaging.Options{})
	switch {
	case errors.Is(err, imaging.ErrUnsupportedType), errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Warn("image processing failed", "bucket", bucket, "file", filename, "error", err)
		jsonError(w, http.StatusUnprocessableEntity, "failed to process image")
		return
	}

	name := blob.NewObjectName(".webp")
	if err := h.Blobs.Upload(bucket, name, result.Data); err != nil {
		slog.Error("failed to store image", "bucket", bucket, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	jsonResponse(w, http.StatusOK, uploadResponse{
		URL:                h.Blobs.PublicURL(bucket, name),
		OriginalSizeBytes:  result.OriginalSize,
		ConvertedSizeBytes: result.ConvertedSize,
		SavingsPercent:     result.SavingsPercent,
		Width:              result.Width,
		Height:             result.Height,
	})
}

// readSource pulls the input image from the form: an uploaded file, or an
// existing stored object referenced by its public URL.
func (h *UploadsHandler) readSource(w http.ResponseWriter, r *http.Request) (data []byte, filename, mime string, ok bool) {
	if sourceURL := r.FormValue("source_url"); sourceURL != "" {
		bucket, name, found := h.Blobs.ParsePublicURL(sourceURL)
		if !found {
			jsonError(w, http.StatusBadRequest, "source_url does not belong to this store")
			return nil, "", "", false
		}
		data, err := h.Blobs.Read(bucket, name)
		if err != nil {
			jsonError(w, http.StatusNotFound, "source image not found")
			return nil, "", "", false
		}
		// Stored assets are always already WebP; no HEIC handling needed.
		return data, name, "image/webp", true
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file or source_url required")
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return nil, "", "", false
	}
	return data, header.Filename, header.Header.Get("Content-Type"), true
}

func parseCrop(r *http.Request) (*imaging.CropRect, error) {
	fields := []string{"crop_x", "crop_y", "crop_w", "crop_h"}
	values := make([]int, len(fields))

	present := 0
	for i, f := range fields {
		raw := r.FormValue(f)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New(f + " must be an integer")
		}
		values[i] = v
		present++
	}

	switch present {
	case 0:
		return nil, nil
	case len(fields):
		if values[2] <= 0 || values[3] <= 0 {
			return nil, errors.New("crop_w and crop_h must be positive")
		}
		return &imaging.CropRect{X: values[0], Y: values[1], W: values[2], H: values[3]}, nil
	default:
		return nil, errors.New("crop requires all of crop_x, crop_y, crop_w, crop_h")
	}
}

type removeRequest struct {
	URL string `json:"url"`
}

// Remove handles DELETE /api/uploads. Removal is best-effort: URLs that
// don't belong to the store or objects already gone are logged, not errors,
// so the caller can always clear its local reference.
func (h *UploadsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		jsonError(w, http.StatusBadRequest, "url required")
		return
	}

	bucket, name, ok := h.Blobs.ParsePublicURL(req.URL)
	if !ok {
		slog.Warn("remove requested for foreign URL", "url", req.URL)
		jsonResponse(w, http.StatusOK, map[string]bool{"removed": false})
		return
	}

	if err := h.Blobs.Remove(bucket, name); err != nil {
		slog.Warn("failed to remove stored image", "bucket", bucket, "name", name, "error", err)
		jsonResponse(w, http.StatusOK, map[string]bool{"removed": false})
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"removed": true})
}
