package server

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"strconv"

	_ "embed"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/matzehuels/bubblechart/pkg/buildinfo"
	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/render"
	"github.com/matzehuels/bubblechart/pkg/session"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

const (
	sessionCookie = "bubblechart_session"

	// eventHeader carries the payload emitted by a click.
	eventHeader = "X-Bubblechart-Event"

	// versionHeader carries the snapshot version a chart was rendered from.
	versionHeader = "X-Bubblechart-Version"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type pageData struct {
	Title     string
	ElementID string
	Chart     template.HTML
}

type nameRequest struct {
	Name string `json:"name"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func endpoint(id string) string {
	return "/api/sessions/" + id
}

// handlePage serves the chart page. A browser keeps its session across
// reloads through a cookie.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sess *session.Session
	if c, err := r.Cookie(sessionCookie); err == nil {
		sess, _ = s.sessions.Get(ctx, c.Value)
	}
	if sess == nil {
		var err error
		if sess, err = s.sessions.Create(ctx); err != nil {
			writeError(w, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	snap := sess.Snapshot()
	chart, err := render.Bytes(ctx, snap, render.FormatSVG, render.Options{Endpoint: endpoint(sess.ID)})
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		Title:     snap.Tree.Name,
		ElementID: snap.ElementID,
		Chart:     template.HTML(chart),
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"build":    buildinfo.Get(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeChart(w, r, sess.ID, sess.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, render.NewDocument(sess.Snapshot()))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	s.interact(w, r, true, func(sess *session.Session, name string) widget.Snapshot {
		var (
			res  widget.ClickResult
			snap widget.Snapshot
		)
		sess.Do(func(c *widget.Controller) {
			res = c.Click(r.Context(), name)
			snap = c.Snapshot()
		})
		if res.Found {
			w.Header().Set(eventHeader, res.Payload)
		}
		return snap
	})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	s.interact(w, r, true, func(sess *session.Session, name string) widget.Snapshot {
		var snap widget.Snapshot
		sess.Do(func(c *widget.Controller) {
			c.Hover(r.Context(), name)
			snap = c.Snapshot()
		})
		return snap
	})
}

func (s *Server) handleUnhover(w http.ResponseWriter, r *http.Request) {
	s.interact(w, r, false, func(sess *session.Session, _ string) widget.Snapshot {
		var snap widget.Snapshot
		sess.Do(func(c *widget.Controller) {
			c.Unhover(r.Context())
			snap = c.Snapshot()
		})
		return snap
	})
}

// interact runs a pointer event against the session and answers with the
// re-rendered chart. needName requires a non-empty name in the body.
func (s *Server) interact(w http.ResponseWriter, r *http.Request, needName bool, fn func(*session.Session, string) widget.Snapshot) {
	if !s.cfg.Widget.Interactive {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "chart is not interactive"))
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req nameRequest
	if needName {
		body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
			return
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode body"))
			return
		}
		if req.Name == "" {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "name is required"))
			return
		}
	}

	s.writeChart(w, r, sess.ID, fn(sess, req.Name))
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, id string, snap widget.Snapshot) {
	out, err := render.Bytes(r.Context(), snap, render.FormatSVG, render.Options{Endpoint: endpoint(id)})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set(versionHeader, strconv.FormatUint(snap.Version, 10))
	_, _ = w.Write(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTree, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusConflict
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
