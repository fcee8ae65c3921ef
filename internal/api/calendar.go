package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hl-journal/internal/domain"
	"hl-journal/internal/storage"
)

// handleGetAllDayNotes serves every day note as a date to text map.
func (s *Server) handleGetAllDayNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.calendar.GetAllDayNotes(r.Context())
	if err != nil {
		s.logger.Printf("get all day notes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar notes")
		return
	}

	result := make(map[string]string, len(notes))
	for _, n := range notes {
		result[n.DateKey] = n.Notes
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetDayNote serves one day's note, empty when none saved.
func (s *Server) handleGetDayNote(w http.ResponseWriter, r *http.Request) {
	dateKey := r.PathValue("date")

	note, err := s.calendar.GetDayNote(r.Context(), dateKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"notes": ""})
			return
		}
		s.logger.Printf("get day note %s: %v", dateKey, err)
		writeError(w, http.StatusInternalServerError, "failed to load day note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"notes": note.Notes})
}

// handleSaveDayNote inserts or replaces one day's note.
func (s *Server) handleSaveDayNote(w http.ResponseWriter, r *http.Request) {
	dateKey := r.PathValue("date")

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note := &domain.DayNote{
		DateKey:   dateKey,
		Notes:     body.Notes,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := s.calendar.PutDayNote(r.Context(), note); err != nil {
		s.logger.Printf("save day note %s: %v", dateKey, err)
		writeError(w, http.StatusInternalServerError, "failed to save day note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// weekNoteJSON is the wire shape of a weekly review.
type weekNoteJSON struct {
	Review  string `json:"review"`
	Well    string `json:"well"`
	Improve string `json:"improve"`
}

// handleGetWeekNote serves one week's review, empty fields when none saved.
func (s *Server) handleGetWeekNote(w http.ResponseWriter, r *http.Request) {
	weekKey := r.PathValue("week")

	note, err := s.calendar.GetWeekNote(r.Context(), weekKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, weekNoteJSON{})
			return
		}
		s.logger.Printf("get week note %s: %v", weekKey, err)
		writeError(w, http.StatusInternalServerError, "failed to load week note")
		return
	}

	writeJSON(w, http.StatusOK, weekNoteJSON{
		Review:  note.Review,
		Well:    note.Well,
		Improve: note.Improve,
	})
}

// handleSaveWeekNote inserts or replaces one week's review.
func (s *Server) handleSaveWeekNote(w http.ResponseWriter, r *http.Request) {
	weekKey := r.PathValue("week")

	var body weekNoteJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	note := &domain.WeekNote{
		WeekKey:   weekKey,
		Review:    body.Review,
		Well:      body.Well,
		Improve:   body.Improve,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := s.calendar.PutWeekNote(r.Context(), note); err != nil {
		s.logger.Printf("save week note %s: %v", weekKey, err)
		writeError(w, http.StatusInternalServerError, "failed to save week note")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetAllWeekNotes serves every week note as a week to review map.
func (s *Server) handleGetAllWeekNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.calendar.GetAllWeekNotes(r.Context())
	if err != nil {
		s.logger.Printf("get all week notes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load week notes")
		return
	}

	result := make(map[string]weekNoteJSON, len(notes))
	for _, n := range notes {
		result[n.WeekKey] = weekNoteJSON{
			Review:  n.Review,
			Well:    n.Well,
			Improve: n.Improve,
		}
	}
	writeJSON(w, http.StatusOK, result)
}
