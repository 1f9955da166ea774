// Package routes wires the JSON API the site frontend consumes.
package routes

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/davidwrenn/portfolio/flickr"
	"github.com/davidwrenn/portfolio/github"
	"github.com/davidwrenn/portfolio/internal/email"
)

// ProjectSource serves the projects page data.
type ProjectSource interface {
	Projects(ctx context.Context) []github.Project
}

// PhotoSource serves the gallery page data.
type PhotoSource interface {
	PhotoData(ctx context.Context) flickr.PhotoData
}

type Server struct {
	Router    *chi.Mux
	Projects  ProjectSource
	Photos    PhotoSource
	Email     email.Sender
	ContactTo string
	Log       zerolog.Logger
}

type ServerOptions struct {
	Projects  ProjectSource
	Photos    PhotoSource
	Email     email.Sender
	ContactTo string
	Log       zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:    r,
		Projects:  opts.Projects,
		Photos:    opts.Photos,
		Email:     opts.Email,
		ContactTo: opts.ContactTo,
		Log:       opts.Log,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.Log.Warn().Err(err).Msg("writing health check response failed")
		}
	})

	r.Get("/api/projects", s.handleProjects)
	r.Get("/api/photos", s.handlePhotos)
	r.Post("/contact", s.handleContact)

	return s
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Log.Warn().Err(err).Msg("writing response failed")
	}
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.Projects.Projects(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	data := s.Photos.PhotoData(r.Context())
	s.writeJSON(w, http.StatusOK, data)
}

type contactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var sub contactSubmission
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	} else {
		_ = r.ParseForm()
		sub.Name = r.Form.Get("name")
		sub.Email = r.Form.Get("email")
		sub.Message = r.Form.Get("message")
	}

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)
	if sub.Name == "" || sub.Message == "" || !looksLikeEmail(sub.Email) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, email and message are required"})
		return
	}

	id := uuid.NewString()
	s.Log.Info().Str("submission_id", id).Str("from", sub.Email).Msg("contact submission")

	body := "<p><b>From:</b> " + html.EscapeString(sub.Name) + " &lt;" + html.EscapeString(sub.Email) + "&gt;</p>" +
		"<p>" + html.EscapeString(sub.Message) + "</p>" +
		"<p><small>Submission " + id + "</small></p>"

	// A delivery failure is our problem, not the visitor's: log it and
	// accept the submission anyway.
	if err := s.Email.Send(s.ContactTo, "Portfolio contact from "+sub.Name, body); err != nil {
		s.Log.Error().Err(err).Str("submission_id", id).Msg("contact delivery failed")
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "id": id})
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".") && !strings.ContainsAny(s, " \t\n")
}
