package http

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
	"github.com/knowledge-challenge/quiz-platform/internal/quiz"
	"github.com/knowledge-challenge/quiz-platform/internal/trivia"
)

// StartSessionHandler begins a fresh quiz attempt for the authenticated user,
// replacing any previous one. An incomplete batch from the provider never
// becomes a session; the user gets a distinct message and may retry.
func StartSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		s, err := svc.Start(r.Context(), userID)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s.View())
	}
}

// GetSessionHandler is the resume path: it returns the live session with its
// fixed choice order, recorded answers, flags and remaining time.
func GetSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Resume(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

type navigateReq struct {
	Action string `json:"action"` // goto|next|previous
	Index  int    `json:"index"`
}

func NavigateHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			formError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		s, err := svc.Navigate(r.Context(), authmw.SubjectFromContext(r.Context()), req.Action, req.Index)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

type answerReq struct {
	Index  int    `json:"index"`
	Choice string `json:"choice"`
}

func AnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			formError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		s, err := svc.SelectAnswer(r.Context(), authmw.SubjectFromContext(r.Context()), req.Index, req.Choice)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

type reviewReq struct {
	Index int `json:"index"`
}

func ReviewHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			formError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		s, err := svc.ToggleReview(r.Context(), authmw.SubjectFromContext(r.Context()), req.Index)
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

func SubmitSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Submit(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func ReportHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Report(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			quizError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// quizError maps domain errors to HTTP statuses, keeping "provider down"
// distinct from a generic acquisition failure.
func quizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		formError(w, http.StatusNotFound, "No quiz session in progress.")
	case errors.Is(err, trivia.ErrUnavailable):
		formError(w, http.StatusServiceUnavailable, "The question service is unreachable. Please try again.")
	case errors.Is(err, quiz.ErrAcquisitionFailed):
		formError(w, http.StatusBadGateway, "Could not fetch a full question set. Please try again.")
	case errors.Is(err, quiz.ErrSessionSubmitted):
		formError(w, http.StatusConflict, "This quiz has already been submitted.")
	case errors.Is(err, quiz.ErrSessionActive):
		formError(w, http.StatusConflict, "The quiz has not been submitted yet.")
	case errors.Is(err, quiz.ErrInvalidIndex):
		formError(w, http.StatusBadRequest, "Question index out of range.")
	default:
		formError(w, http.StatusInternalServerError, "Server error.")
	}
}
