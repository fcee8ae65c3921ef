package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// allowedImageExts are the accepted screenshot file types.
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// maxScreenshotBytes caps uploads at 16 MiB.
const maxScreenshotBytes = 16 << 20

func tradeIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return 0, false
	}
	return id, true
}

// handleGetNotes serves a trade's note, empty when none saved.
func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	note, err := s.notes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"notes": ""})
			return
		}
		s.logger.Printf("get notes for trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load notes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"notes": note.Notes})
}

// handleSaveNotes inserts or replaces a trade's note.
func (s *Server) handleSaveNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note := &domain.TradeNote{
		TradeID:   id,
		Notes:     body.Notes,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := s.notes.Put(r.Context(), note); err != nil {
		s.logger.Printf("save notes for trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to save notes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetTags serves a trade's tags.
func (s *Server) handleGetTags(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	tags, err := s.tags.GetByTrade(r.Context(), id)
	if err != nil {
		s.logger.Printf("get tags for trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// handleAddTag attaches a tag to a trade. Duplicates are ignored.
func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tag := strings.TrimSpace(body.Tag)
	if tag == "" {
		writeError(w, http.StatusBadRequest, "Tag cannot be empty")
		return
	}

	if err := s.tags.Add(r.Context(), id, tag); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("add tag to trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to add tag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleRemoveTag detaches a tag from a trade.
func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}
	tag := r.PathValue("tag")

	if err := s.tags.Remove(r.Context(), id, tag); err != nil {
		s.logger.Printf("remove tag from trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to remove tag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetAllTags serves all distinct tags across trades.
func (s *Server) handleGetAllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.GetAll(r.Context())
	if err != nil {
		s.logger.Printf("get all tags: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// handleGetTradeTagsMap serves the trade to tags mapping for one wallet.
// Keys are stringified trade IDs for client-side filtering.
func (s *Server) handleGetTradeTagsMap(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	byTrade, err := s.tags.GetByWallet(r.Context(), wallet)
	if err != nil {
		s.logger.Printf("get trade tags for %s: %v", wallet, err)
		writeError(w, http.StatusInternalServerError, "failed to load tags")
		return
	}

	result := make(map[string][]string, len(byTrade))
	for tradeID, tags := range byTrade {
		result[strconv.FormatInt(tradeID, 10)] = tags
	}
	writeJSON(w, http.StatusOK, result)
}

// screenshotJSON is the wire shape of screenshot metadata.
type screenshotJSON struct {
	ID           int64  `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	UploadedAt   int64  `json:"uploaded_at"`
}

// handleGetScreenshots lists a trade's screenshots.
func (s *Server) handleGetScreenshots(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	shots, err := s.screenshots.GetByTrade(r.Context(), id)
	if err != nil {
		s.logger.Printf("get screenshots for trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load screenshots")
		return
	}

	out := make([]screenshotJSON, 0, len(shots))
	for _, sc := range shots {
		out = append(out, screenshotJSON{
			ID:           sc.ID,
			Filename:     sc.Filename,
			OriginalName: sc.OriginalName,
			UploadedAt:   sc.UploadedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]screenshotJSON{"screenshots": out})
}

// handleUploadScreenshot stores an uploaded chart image under a unique name.
func (s *Server) handleUploadScreenshot(w http.ResponseWriter, r *http.Request) {
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxScreenshotBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		writeError(w, http.StatusBadRequest, "File type "+ext+" not allowed")
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.logger.Printf("create upload dir: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	filename := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		s.logger.Printf("create upload file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Printf("write upload file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	sc := &domain.Screenshot{
		TradeID:      id,
		Filename:     filename,
		OriginalName: header.Filename,
		UploadedAt:   time.Now().UnixMilli(),
	}
	if err := s.screenshots.Insert(r.Context(), sc); err != nil {
		s.logger.Printf("insert screenshot for trade %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to store screenshot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "filename": filename})
}

// handleServeScreenshot serves a stored image by filename.
func (s *Server) handleServeScreenshot(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(r.PathValue("filename"))
	http.ServeFile(w, r, filepath.Join(s.uploadDir, filename))
}

// handleDeleteScreenshot removes a screenshot's file and metadata.
func (s *Server) handleDeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid screenshot id")
		return
	}

	sc, err := s.screenshots.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		s.logger.Printf("get screenshot %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete screenshot")
		return
	}

	if path := filepath.Join(s.uploadDir, filepath.Base(sc.Filename)); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Printf("remove screenshot file %s: %v", sc.Filename, err)
		}
	}

	if err := s.screenshots.Delete(r.Context(), id); err != nil {
		s.logger.Printf("delete screenshot %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete screenshot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
