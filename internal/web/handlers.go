package web

import (
	"net/http"

	"github.com/evcraddock/comment-panel/internal/comment"
	"github.com/evcraddock/comment-panel/internal/logging"
	"github.com/evcraddock/comment-panel/internal/panel"
)

type confirmData struct {
	Prompt string
	Back   string
}

// handlePage renders the comment panel for the filter in the query string.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != PagePath {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loader, err := s.newLoader(r)
	if err != nil {
		s.logger.Error("building page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	loader.Page().SetFilterControls(comment.FilterFromValues(r.URL.Query()))
	logging.Annotate(r.Context(), "route", "page", "filter", loader.Page().BuildFilterCriteria().Values().Encode())

	// Failures are already shown on the page.
	if err := loader.Load(r.Context(), r.URL); err != nil {
		s.logger.Warn("loading comment panel", "error", err)
	}

	s.writePage(w, loader.Page(), http.StatusOK)
}

// handleDelete asks for confirmation, then deletes all comments. Nothing is
// sent to the backend until the visitor confirms.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loader, err := s.newLoader(r)
	if err != nil {
		s.logger.Error("building page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	confirmed := panel.ConfirmFunc(func(string) bool {
		return r.Method == http.MethodPost && r.PostFormValue("confirm") == "yes"
	})
	done, ok := loader.DeleteAll(r.Context(), confirmed)
	logging.Annotate(r.Context(), "route", "delete", "confirmed", ok)
	if !ok {
		s.render(w, "confirm.html", confirmData{Prompt: panel.DeletePrompt, Back: PagePath})
		return
	}

	select {
	case err := <-done:
		if err != nil {
			loader.Page().ShowUnavailable()
			s.writePage(w, loader.Page(), http.StatusBadGateway)
			return
		}
	case <-r.Context().Done():
		return
	}

	http.Redirect(w, r, PagePath, http.StatusSeeOther)
}

func (s *Server) newLoader(r *http.Request) (*panel.Loader, error) {
	page, err := panel.DefaultPage(panel.WithLocation(s.loc))
	if err != nil {
		return nil, err
	}
	return panel.NewLoader(s.backend.ForRequest(r), page, s.logger), nil
}

func (s *Server) writePage(w http.ResponseWriter, page *panel.Page, code int) {
	html, err := page.HTML()
	if err != nil {
		s.logger.Error("rendering page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Warn("writing page", "error", err)
	}
}
