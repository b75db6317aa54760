package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
)

// user-facing messages
const (
	msgBadCredentials   = "Sai tên đăng nhập hoặc mã PIN."
	msgDuplicateUser    = "Tên đăng nhập đã tồn tại."
	msgRegistered       = "Đăng ký thành công, mời bạn đăng nhập."
	msgInternal         = "Đã có lỗi xảy ra, vui lòng thử lại."
	msgEmptyChatMessage = "message is required"
)

type pageData struct {
	UserName      string
	ExportEnabled bool
	Error         string
	Message       string
	Form          string

	Content string
	Moods   []int
	Advice  string

	Entries []*models.Entry
	Series  []models.MoodPoint
	Counts  []models.MoodCount
}

var moodChoices = func() []int {
	out := make([]int, 0, common.MaxMood-common.MinMood+1)
	for m := common.MinMood; m <= common.MaxMood; m++ {
		out = append(out, m)
	}
	return out
}()

const recentEntries = 5

func (s *Server) page(id *models.Identity) *pageData {
	p := &pageData{Moods: moodChoices, ExportEnabled: s.deps.Export != nil}
	if id != nil {
		p.UserName = id.UserName
	}
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", s.page(nil))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	pin := r.PostFormValue("pin")

	_, err := s.deps.Accounts.Register(r.Context(), username, pin)
	if err != nil {
		p := s.page(nil)
		p.Form = username
		switch {
		case errors.Is(err, common.ErrorDuplicateUsername):
			p.Error = msgDuplicateUser
			s.render(w, r, http.StatusConflict, "register.html", p)
		case errors.Is(err, common.ErrorValidation):
			p.Error = err.Error()
			s.render(w, r, http.StatusBadRequest, "register.html", p)
		default:
			s.logger.Error(r.Context(), "registration failed", "error", err)
			p.Error = msgInternal
			s.render(w, r, http.StatusInternalServerError, "register.html", p)
		}
		return
	}

	s.logger.Info(r.Context(), "account registered", "username", strings.TrimSpace(username))
	http.Redirect(w, r, "/login?registered=1", http.StatusFound)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	p := s.page(nil)
	if r.URL.Query().Get("registered") != "" {
		p.Message = msgRegistered
	}
	s.render(w, r, http.StatusOK, "login.html", p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	pin := r.PostFormValue("pin")

	account, err := s.deps.Accounts.Authenticate(r.Context(), username, pin)
	if err != nil {
		p := s.page(nil)
		p.Form = username
		if errors.Is(err, common.ErrorUnauthorized) {
			p.Error = msgBadCredentials
			s.render(w, r, http.StatusUnauthorized, "login.html", p)
			return
		}
		s.logger.Error(r.Context(), "authentication failed", "error", err)
		p.Error = msgInternal
		s.render(w, r, http.StatusInternalServerError, "login.html", p)
		return
	}

	token, expires, err := s.deps.Sessions.Open(r.Context(), account)
	if err != nil {
		s.logger.Error(r.Context(), "session open failed", "error", err)
		p := s.page(nil)
		p.Error = msgInternal
		s.render(w, r, http.StatusInternalServerError, "login.html", p)
		return
	}

	s.setSessionCookie(w, token, expires)
	s.logger.Info(r.Context(), "login", "account_id", account.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout ends the session if one can be resolved and always clears the
// cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		if id, err := s.deps.Sessions.Resolve(r.Context(), c.Value); err == nil {
			if err := s.deps.Sessions.Close(r.Context(), id.SessionID); err != nil {
				s.logger.Error(r.Context(), "session close failed", "error", err)
			}
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) homePage(r *http.Request, id *models.Identity) (*pageData, error) {
	p := s.page(id)

	entries, err := s.deps.Entries.History(r.Context(), id.AccountID)
	if err != nil {
		return nil, err
	}
	if len(entries) > recentEntries {
		entries = entries[:recentEntries]
	}
	p.Entries = entries

	p.Series, err = s.deps.Entries.Series(r.Context(), id.AccountID, s.opts.ChartWindow)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	p, err := s.homePage(r, id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home.html", p)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	content := r.PostFormValue("content")

	entry, err := s.deps.Entries.Append(r.Context(), id.AccountID, content, r.PostFormValue("mood"))
	if err != nil {
		if !errors.Is(err, common.ErrorValidation) {
			s.internalError(w, r, err)
			return
		}
		if wantsJSON(r) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, perr := s.homePage(r, id)
		if perr != nil {
			s.internalError(w, r, perr)
			return
		}
		p.Error = err.Error()
		p.Content = content
		s.render(w, r, http.StatusBadRequest, "home.html", p)
		return
	}

	advice := s.deps.Advisor.Advise(r.Context(), entry.Content, entry.Mood)
	s.logger.Info(r.Context(), "entry saved", "account_id", id.AccountID, "mood", entry.Mood)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry, "advice": advice})
		return
	}

	p, err := s.homePage(r, id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	p.Advice = advice
	s.render(w, r, http.StatusOK, "home.html", p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	p := s.page(id)

	var err error
	if p.Entries, err = s.deps.Entries.History(r.Context(), id.AccountID); err != nil {
		s.internalError(w, r, err)
		return
	}
	if p.Series, err = s.deps.Entries.Series(r.Context(), id.AccountID, s.opts.ChartWindow); err != nil {
		s.internalError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"entries": p.Entries, "series": p.Series})
		return
	}
	s.render(w, r, http.StatusOK, "history.html", p)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	p := s.page(id)

	var err error
	if p.Counts, err = s.deps.Entries.MoodCounts(r.Context(), id.AccountID); err != nil {
		s.internalError(w, r, err)
		return
	}
	if p.Series, err = s.deps.Entries.Series(r.Context(), id.AccountID, s.opts.ChartWindow); err != nil {
		s.internalError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"counts": p.Counts, "series": p.Series})
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", p)
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "chat.html", s.page(identityFrom(r.Context())))
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSONError(w, msgEmptyChatMessage, http.StatusBadRequest)
		return
	}

	reply := s.deps.Companion.Reply(r.Context(), id.UserName, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())

	url, err := s.deps.Export.Export(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "journal exported", "account_id", id.AccountID)
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	if wantsJSON(r) {
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Error(w, msgInternal, http.StatusInternalServerError)
}
