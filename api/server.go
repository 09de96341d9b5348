// Package api serves the rent estimation form and its JSON equivalent.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-estimator/estimator"
	"rental-estimator/models"
	"rental-estimator/services"
	"rental-estimator/utils"
)

// Server holds the handlers' collaborators.
type Server struct {
	pipeline  *services.Pipeline
	predictor estimator.Predictor
	logger    *utils.Logger
	page      *template.Template
}

// NewServer creates a Server.
func NewServer(pipeline *services.Pipeline, predictor estimator.Predictor, logger *utils.Logger) *Server {
	return &Server{
		pipeline:  pipeline,
		predictor: predictor,
		logger:    logger,
		page:      template.Must(template.New("index").Parse(indexHTML)),
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(s.logger))

	r.HandleFunc("/", s.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleFormSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/estimate", s.handleEstimate).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

// Estimate runs one validated record through the pipeline and the model.
func (s *Server) Estimate(ctx context.Context, rec models.ListingRecord) (models.Estimate, error) {
	features, _, err := s.pipeline.Process(ctx, rec)
	if err != nil {
		return models.Estimate{}, err
	}

	prediction, err := s.predictor.Predict(ctx, features)
	if err != nil {
		return models.Estimate{}, err
	}
	return models.Estimate{Prediction: prediction, Features: features}, nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, newFormView(nil))
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, newFormView(r.PostForm).withError("Could not read the submitted form."))
		return
	}

	view := newFormView(r.PostForm)
	req, parseErr := requestFromForm(r.PostForm)
	rec, err := req.Record()
	if err = mergeValidation(parseErr, err); err != nil {
		s.render(w, statusFor(err), view.withFailure(err))
		return
	}

	est, err := s.Estimate(r.Context(), rec)
	if err != nil {
		s.logger.Error("[api] Estimate failed: %v", err)
		s.render(w, statusFor(err), view.withFailure(err))
		return
	}

	view.Prediction = strconv.FormatFloat(est.Prediction, 'f', 2, 64)
	s.render(w, http.StatusOK, view)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := req.Record()
	if err != nil {
		respondWithFailure(w, err)
		return
	}

	est, err := s.Estimate(r.Context(), rec)
	if err != nil {
		s.logger.Error("[api] Estimate failed: %v", err)
		respondWithFailure(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, est)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, status int, view formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, view); err != nil {
		s.logger.Error("[api] Render form: %v", err)
	}
}

// statusFor maps submission errors to 400 and everything else to 500.
func statusFor(err error) int {
	var verr *models.ValidationError
	var unknown *models.UnknownBedroomsError
	if errors.As(err, &verr) || errors.As(err, &unknown) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondWithFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, "Estimation failed")
		return
	}

	payload := map[string]any{"error": err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		payload["error"] = "Validation failed"
		payload["fields"] = verr.Fields
	}
	respondWithJSON(w, status, payload)
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
