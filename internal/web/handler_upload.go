package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/vbonduro/imgprompt/internal/service"
)

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8). The WHATWG sniff table used by net/http has no WebP signature.
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// sniffMIME detects the content type from magic bytes.
func sniffMIME(data []byte) string {
	if isWebP(data) {
		return "image/webp"
	}
	return http.DetectContentType(data)
}

// declaredMIME returns the MIME type the client declared for the part. When
// the client sent none, or the generic octet-stream, the bytes are sniffed.
func declaredMIME(header *multipart.FileHeader, data []byte) string {
	mt := header.Header.Get("Content-Type")
	if mt == "" || mt == "application/octet-stream" {
		return sniffMIME(data)
	}
	return mt
}

// uploadHeadroom is the room left for multipart headers and boundaries on top
// of the image itself.
const uploadHeadroom = 64 << 10

// Upload messages shown in the workspace.
const (
	msgUploadUnreadable = "Failed to read the uploaded image. Please try again."
	msgImageTooLarge    = "Image is too large. Please upload an image under %d MB."
)

func (s *Server) handleSelectImage(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	// The body limit doubles as the in-memory limit so no part is ever
	// spooled to a temporary file.
	limit := s.maxUploadBytes + uploadHeadroom
	tooLarge := fmt.Sprintf(msgImageTooLarge, s.maxUploadBytes>>20)
	if r.ContentLength > limit {
		s.respondUploadError(w, r, http.StatusRequestEntityTooLarge, c, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondUploadError(w, r, http.StatusRequestEntityTooLarge, c, tooLarge)
			return
		}
		s.logger.Info("parse upload failed", "error", err)
		s.respondUploadError(w, r, http.StatusBadRequest, c, msgUploadUnreadable)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Error("failed to remove multipart form", "error", err)
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		s.respondUploadError(w, r, http.StatusBadRequest, c, service.MsgNoImage)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	if header.Size > s.maxUploadBytes {
		s.respondUploadError(w, r, http.StatusRequestEntityTooLarge, c, tooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "error", err)
		return
	}

	status := http.StatusOK
	switch err := c.SelectImage(header.Filename, declaredMIME(header, imageData), imageData); {
	case errors.Is(err, service.ErrInvalidFileType):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrBusy):
		http.Error(w, "a prompt is being generated", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "failed to select image", http.StatusInternalServerError)
		s.logger.Error("select image failed", "error", err)
		return
	}

	s.respondWorkspace(w, r, status, c)
}

// respondUploadError shows msg in the workspace without touching the session
// state. Plain form posts get the message as text.
func (s *Server) respondUploadError(w http.ResponseWriter, r *http.Request, status int, c *service.Controller, msg string) {
	if r.Header.Get("HX-Request") != "true" {
		http.Error(w, msg, status)
		return
	}
	v := s.view(c)
	v.Error = msg
	if err := s.renderPartial(w, status, "workspace", v, workspaceFiles...); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	c, err := s.controllerFor(w, r)
	if err != nil {
		s.sessionError(w, err)
		return
	}

	img := c.Preview()
	if img == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Cache-Control", "private, no-store")
	if _, err := w.Write(img.Data); err != nil {
		s.logger.Error("write preview failed", "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
