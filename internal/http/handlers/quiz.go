package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

// QuizHandler serves the latest quiz to users and quiz CRUD to admins.
type QuizHandler struct {
	quizzes repo.QuizRepo
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(quizzes repo.QuizRepo) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// userQuizQuestion omits the correct answer.
type userQuizQuestion struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	OptionA string    `json:"optionA"`
	OptionB string    `json:"optionB"`
	OptionC string    `json:"optionC"`
	OptionD string    `json:"optionD"`
}

type userQuiz struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Questions []userQuizQuestion `json:"questions"`
}

// HandleLatest serves GET /quiz/latest. Correct answers are stripped.
func (h *QuizHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Latest(r.Context())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No quiz available")
			return
		}
		log.Printf("[quiz] latest: %v", err)
		respondServerError(w)
		return
	}

	out := userQuiz{ID: quiz.ID, Title: quiz.Title, Questions: make([]userQuizQuestion, 0, len(quiz.Questions))}
	for _, q := range quiz.Questions {
		out.Questions = append(out.Questions, userQuizQuestion{
			ID: q.ID, Text: q.Text,
			OptionA: q.OptionA, OptionB: q.OptionB, OptionC: q.OptionC, OptionD: q.OptionD,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type quizQuestionBody struct {
	Text    string `json:"text"`
	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`
	Correct string `json:"correct"`
}

type quizBody struct {
	Title     string             `json:"title"`
	Questions []quizQuestionBody `json:"questions"`
}

// HandleCreate serves POST /admin/quizzes.
func (h *QuizHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body quizBody
	if err := decodeJSON(r, &body); err != nil || body.Title == "" || len(body.Questions) == 0 {
		respondAdminError(w, http.StatusBadRequest, "title and at least one question are required")
		return
	}

	quiz := model.Quiz{Title: body.Title}
	for _, q := range body.Questions {
		if q.Text == "" || q.Correct == "" {
			respondAdminError(w, http.StatusBadRequest, "each question needs text and a correct answer")
			return
		}
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			Text: q.Text, OptionA: q.OptionA, OptionB: q.OptionB,
			OptionC: q.OptionC, OptionD: q.OptionD, Correct: q.Correct,
		})
	}

	saved, err := h.quizzes.Create(r.Context(), quiz)
	if err != nil {
		log.Printf("[quiz] create: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not create quiz")
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// HandleList serves GET /admin/quizzes.
func (h *QuizHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context())
	if err != nil {
		log.Printf("[quiz] list: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not list quizzes")
		return
	}
	respondJSON(w, http.StatusOK, quizzes)
}

// HandleDelete serves DELETE /admin/quizzes/{id}.
func (h *QuizHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondAdminError(w, http.StatusBadRequest, "Invalid quiz id")
		return
	}
	if err := h.quizzes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondAdminError(w, http.StatusNotFound, "Quiz not found")
			return
		}
		log.Printf("[quiz] delete: %v", err)
		respondAdminError(w, http.StatusInternalServerError, "Could not delete quiz")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
