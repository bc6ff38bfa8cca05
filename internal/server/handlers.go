package server

import (
	"errors"
	"log/slog"
	"net/http"

	"remote-viewing/internal/viewing"
	"remote-viewing/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

const (
	flashError   = "error"
	flashSuccess = "success"
)

const (
	msgNameRequired     = "Name cannot be empty"
	msgImageUnavailable = "Error fetching the image. Please try again later."
	msgNoActiveSession  = "No active session found. Please start a new session."
	msgGuessSubmitted   = "Guess submitted successfully!"
	msgGuessRequired    = "Please enter a guess before submitting."
	msgGuessAbandoned   = "Your session was discarded because no guess was entered. Please start a new session."
	msgGuessDuplicate   = "A guess was already submitted for this session."
	msgImageMissing     = "The image session you are trying to view does not exist. It may have been deleted."
	msgRateMissing      = "The session you attempted to rate does not exist. It may have been deleted."
	msgImageRated       = "Image rated successfully!"
	msgRatingUpdated    = "Rating updated successfully!"
	msgInvalidRating    = "Rating must be between 1 and 5."
)

type startSessionRequest struct {
	Name string `form:"name" binding:"name"`
}

type submitGuessRequest struct {
	Name  string `form:"name" binding:"name"`
	Guess string `form:"guess" binding:"guess"`
}

type ratingRequest struct {
	Rating int `form:"rating" binding:"required,rating"`
}

type sessionURI struct {
	ID uint `uri:"id" binding:"required"`
}

type resultsQuery struct {
	SortBy    string `form:"sort_by"`
	Direction string `form:"direction"`
}

var ratingMessages = bindMessages{
	"Rating": {
		"required": msgInvalidRating,
		"rating":   msgInvalidRating,
	},
}

func (s *Server) handleHome(c *gin.Context) {
	if err := s.manager.Landing(c.Request.Context()); err != nil {
		s.fail(c, "landing sweep failed", err)
		return
	}
	_, name := s.sessions.Current(c)
	s.render(c, web.Home(s.popFlash(c), name))
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req startSessionRequest
	if msg, ok := bindForm(c, &req, bindMessages{
		"Name": {"name": "Name must be 100 characters or fewer"},
	}, msgNameRequired); !ok {
		s.redirectWithFlash(c, "/", flashError, msg)
		return
	}
	out, err := s.manager.Start(c.Request.Context(), viewing.StartInput{Name: req.Name})
	switch {
	case errors.Is(err, viewing.ErrNameRequired):
		s.redirectWithFlash(c, "/", flashError, msgNameRequired)
		return
	case errors.Is(err, viewing.ErrImageUnavailable):
		s.redirectWithFlash(c, "/", flashError, msgImageUnavailable)
		return
	case err != nil:
		s.fail(c, "start session failed", err)
		return
	}
	s.sessions.SetCurrent(c, out.SessionID, normalizeName(req.Name))
	s.render(c, web.SessionStarted(s.popFlash(c), normalizeName(req.Name), out.UniqueIdentifier))
}

func (s *Server) handleSubmitGuess(c *gin.Context) {
	var req submitGuessRequest
	if msg, ok := bindForm(c, &req, bindMessages{
		"Guess": {"guess": "Guess must be 2000 characters or fewer"},
	}, msgGuessRequired); !ok {
		s.redirectWithFlash(c, "/reveal_image", flashError, msg)
		return
	}
	activeID, _ := s.sessions.Current(c)
	out, err := s.manager.SubmitGuess(c.Request.Context(), viewing.SubmitGuessInput{
		ActiveID: activeID,
		Name:     req.Name,
		Guess:    req.Guess,
	})
	if out != nil && out.SessionID != activeID && !errors.Is(err, viewing.ErrGuessAbandoned) {
		s.sessions.SetCurrent(c, out.SessionID, "")
	}
	switch {
	case err == nil:
		s.redirectWithFlash(c, "/reveal_image", flashSuccess, msgGuessSubmitted)
	case errors.Is(err, viewing.ErrNoActiveSession):
		s.redirectWithFlash(c, "/", flashError, msgNoActiveSession)
	case errors.Is(err, viewing.ErrGuessRequired):
		s.redirectWithFlash(c, "/reveal_image", flashError, msgGuessRequired)
	case errors.Is(err, viewing.ErrGuessAlreadySubmitted):
		s.redirectWithFlash(c, "/reveal_image", flashError, msgGuessDuplicate)
	case errors.Is(err, viewing.ErrGuessAbandoned):
		s.sessions.ClearCurrent(c)
		s.redirectWithFlash(c, "/", flashError, msgGuessAbandoned)
	default:
		s.fail(c, "submit guess failed", err)
	}
}

func (s *Server) handleRevealImage(c *gin.Context) {
	activeID, _ := s.sessions.Current(c)
	out, err := s.manager.Reveal(c.Request.Context(), activeID)
	if errors.Is(err, viewing.ErrSessionNotFound) {
		s.redirectWithFlash(c, "/", flashError, msgNoActiveSession)
		return
	}
	if err != nil {
		s.fail(c, "reveal failed", err)
		return
	}
	page := web.RevealPage{
		Flash:            s.popFlash(c),
		UniqueIdentifier: out.UniqueIdentifier,
		ImageURL:         out.ImageURL,
	}
	if out.UserGuess != nil {
		page.Guess = *out.UserGuess
	}
	if out.Rating != nil {
		page.Rating = *out.Rating
	}
	s.render(c, web.Reveal(page))
}

func (s *Server) handleRateImage(c *gin.Context) {
	var req ratingRequest
	if msg, ok := bindForm(c, &req, ratingMessages, msgInvalidRating); !ok {
		s.redirectWithFlash(c, "/reveal_image", flashError, msg)
		return
	}
	activeID, _ := s.sessions.Current(c)
	err := s.manager.Rate(c.Request.Context(), activeID, req.Rating)
	switch {
	case err == nil:
		s.redirectWithFlash(c, "/", flashSuccess, msgImageRated)
	case errors.Is(err, viewing.ErrInvalidRating):
		s.redirectWithFlash(c, "/reveal_image", flashError, msgInvalidRating)
	case errors.Is(err, viewing.ErrSessionNotFound):
		s.redirectWithFlash(c, "/", flashError, msgNoActiveSession)
	default:
		s.fail(c, "rate failed", err)
	}
}

func (s *Server) handleViewResults(c *gin.Context) {
	var query resultsQuery
	if !bindQuery(c, &query) {
		return
	}
	out, err := s.manager.Results(c.Request.Context(), viewing.ListInput{
		SortBy:    query.SortBy,
		Direction: query.Direction,
	})
	if err != nil {
		s.fail(c, "results failed", err)
		return
	}
	rows := make([]web.ResultRow, 0, len(out.Sessions))
	for _, session := range out.Sessions {
		rows = append(rows, resultRow(session))
	}
	s.render(c, web.Results(web.ResultsPage{
		Flash:     s.popFlash(c),
		Rows:      rows,
		SortBy:    string(out.SortBy),
		Direction: string(out.Direction),
	}))
}

func (s *Server) handleViewImage(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	session, err := s.manager.Lookup(c.Request.Context(), uri.ID)
	if errors.Is(err, viewing.ErrSessionNotFound) {
		s.redirectWithFlash(c, "/view_results", flashError, msgImageMissing)
		return
	}
	if err != nil {
		s.fail(c, "view image failed", err)
		return
	}
	s.render(c, web.ViewImage(web.ImagePage{
		Flash: s.popFlash(c),
		Row:   resultRow(*session),
		Image: session.ImageURL,
	}))
}

func (s *Server) handleUpdateRating(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	var req ratingRequest
	if msg, ok := bindForm(c, &req, ratingMessages, msgInvalidRating); !ok {
		s.redirectWithFlash(c, "/view_results", flashError, msg)
		return
	}
	err := s.manager.UpdateRating(c.Request.Context(), uri.ID, req.Rating)
	switch {
	case err == nil:
		s.redirectWithFlash(c, "/view_results", flashSuccess, msgRatingUpdated)
	case errors.Is(err, viewing.ErrInvalidRating):
		s.redirectWithFlash(c, "/view_results", flashError, msgInvalidRating)
	case errors.Is(err, viewing.ErrSessionNotFound):
		s.redirectWithFlash(c, "/view_results", flashError, msgRateMissing)
	default:
		s.fail(c, "update rating failed", err)
	}
}

func (s *Server) render(c *gin.Context, component templ.Component) {
	templ.Handler(component).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) popFlash(c *gin.Context) web.Flash {
	kind, message := s.sessions.PopFlash(c)
	return web.Flash{Kind: kind, Message: message}
}

func (s *Server) redirectWithFlash(c *gin.Context, location, kind, message string) {
	s.sessions.SetFlash(c, kind, message)
	c.Redirect(http.StatusFound, location)
}

func (s *Server) fail(c *gin.Context, message string, err error) {
	slog.Error(message, "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "internal server error")
}

func resultRow(session viewing.Session) web.ResultRow {
	row := web.ResultRow{
		ID:               session.ID,
		Name:             session.Name,
		UniqueIdentifier: session.UniqueIdentifier,
		CreatedDate:      session.CreatedDate,
	}
	if session.UserGuess != nil {
		row.Guess = *session.UserGuess
	}
	if session.Rating != nil {
		row.Rating = *session.Rating
	}
	return row
}
