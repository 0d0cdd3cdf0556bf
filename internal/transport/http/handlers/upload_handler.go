package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const defaultUploadMIME = "image/png"

type UploadHandler struct {
	log      *zap.Logger
	maxBytes int64
}

func NewUploadHandler(log *zap.Logger, maxBytes int64) *UploadHandler {
	return &UploadHandler{log: log, maxBytes: maxBytes}
}

// Upload turns the multipart "file" field into a data URL. Nothing is stored.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<10)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "multipart form expected")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		h.log.Error("read upload failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	if int64(len(data)) > h.maxBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	mimeType := uploadMIME(header.Header.Get("Content-Type"), data)
	h.log.Debug("file uploaded",
		zap.String("filename", header.Filename),
		zap.String("mime", mimeType),
		zap.Int("bytes", len(data)),
	)
	writeJSON(w, http.StatusOK, map[string]string{
		"url": fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)),
	})
}

// uploadMIME prefers the declared part type, then sniffs the content.
func uploadMIME(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if len(data) == 0 {
		return defaultUploadMIME
	}
	sniffed, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if sniffed == "application/octet-stream" {
		return defaultUploadMIME
	}
	return sniffed
}
