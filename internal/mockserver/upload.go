package mockserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uploadImage stores a multipart "file" under a random name and returns its
// public URL.
func (s *Server) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File tidak ditemukan"})
		return
	}
	if fh.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "Ukuran file maksimal 5MB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		fail(c, err)
		return
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File harus berupa gambar"})
		return
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.opts.UploadDir, name), data, 0o644); err != nil {
		fail(c, err)
		return
	}
	log.Debug("Stored upload", "name", name, "original", fh.Filename, "type", mt.String(), "bytes", len(data))

	url := "/uploads/" + name
	if s.opts.PublicURL != "" {
		url = strings.TrimRight(s.opts.PublicURL, "/") + url
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "filename": name, "size": len(data)})
}
