package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/meet"
	"github.com/fin100x/server/internal/middleware"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

// MeetingHandler serves advisor meetings and transcript retrieval.
type MeetingHandler struct {
	meetings    repo.MeetingRepo
	transcripts meet.TranscriptFetcher
}

// NewMeetingHandler creates a MeetingHandler.
func NewMeetingHandler(meetings repo.MeetingRepo, transcripts meet.TranscriptFetcher) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, transcripts: transcripts}
}

type meetingBody struct {
	AdvisorID uuid.UUID `json:"advisorId"`
	MeetLink  string    `json:"meetLink"`
	EventID   *string   `json:"eventId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// HandleCreate serves POST /meetings.
func (h *MeetingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body meetingBody
	if err := decodeJSON(r, &body); err != nil || body.AdvisorID == uuid.Nil || body.MeetLink == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "advisorId and meetLink are required")
		return
	}
	if !body.EndTime.After(body.StartTime) {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "endTime must be after startTime")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	meeting, err := h.meetings.Create(r.Context(), model.Meeting{
		UserID:    principal.UserID,
		AdvisorID: body.AdvisorID,
		MeetLink:  body.MeetLink,
		EventID:   body.EventID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		log.Printf("[meeting] create: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusCreated, meeting)
}

// HandleList serves GET /meetings.
func (h *MeetingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	meetings, err := h.meetings.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		log.Printf("[meeting] list: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, meetings)
}

// HandleNext serves GET /meetings/next.
func (h *MeetingHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())
	meeting, err := h.meetings.NextForUser(r.Context(), principal.UserID, time.Now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No upcoming meeting")
			return
		}
		log.Printf("[meeting] next: %v", err)
		respondServerError(w)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// HandleTranscript serves GET /meetings/{id}/transcript. The fetched
// transcript is cached on the meeting; later calls return the cached copy.
func (h *MeetingHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid meeting id")
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	meeting, err := h.meetings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Meeting not found")
			return
		}
		log.Printf("[meeting] get: %v", err)
		respondServerError(w)
		return
	}
	if meeting.UserID != principal.UserID {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Meeting not found")
		return
	}

	if meeting.Transcript != nil {
		respondJSON(w, http.StatusOK, map[string]string{"transcript": *meeting.Transcript})
		return
	}

	transcript, err := h.transcripts.Fetch(r.Context(), meeting.MeetLink, meeting.StartTime, meeting.EndTime)
	if err != nil {
		switch {
		case errors.Is(err, meet.ErrRecordNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Conference record not found; the meeting may not have taken place yet")
		case errors.Is(err, meet.ErrTranscriptNotReady):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Transcript not available yet")
		default:
			log.Printf("[meeting] fetch transcript: %v", err)
			respondServerError(w)
		}
		return
	}

	if err := h.meetings.SaveTranscript(r.Context(), meeting.ID, transcript.Text, transcript.ConferenceRecordID); err != nil {
		log.Printf("[meeting] cache transcript: %v", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"transcript": transcript.Text})
}
