package ui

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/ollama-chat-relay/internal/buildinfo"
	"github.com/varsilias/ollama-chat-relay/internal/chat"
)

func RegisterRoutes(mux chi.Router, h *UI) {
	mux.Get("/", h.Home)
	mux.Post("/ui/chat", h.ChatPost)
	mux.Get("/ui/transcript", h.Transcript)
}

// Home renders the whole page.
func (u *UI) Home(w http.ResponseWriter, r *http.Request) {
	u.render(w, "chat.html", map[string]any{
		"Model":      u.model,
		"Transcript": u.transcriptView(),
		"Version":    buildinfo.Version,
	}, http.StatusOK)
}

// ChatPost appends the user turn and starts the round trip. htmx callers get
// the transcript fragment back, plain form posts are redirected home.
func (u *UI) ChatPost(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	err := u.chat.Send(r.Context(), r.Form.Get("message"))
	htmx := r.Header.Get("HX-Request") == "true"

	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		if htmx {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "a reply is still pending", http.StatusConflict)
		return
	case err != nil:
		u.log.Error("chat send", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if !htmx {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	u.render(w, "fragment.html", u.transcriptView(), http.StatusOK)
}

// Transcript is polled by the thinking bubble until the reply lands.
func (u *UI) Transcript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	u.render(w, "fragment.html", u.transcriptView(), http.StatusOK)
}
