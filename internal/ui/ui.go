package ui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/varsilias/ollama-chat-relay/internal/chat"
	"github.com/varsilias/ollama-chat-relay/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

type UI struct {
	log   *slog.Logger
	tpl   *template.Template
	chat  *chat.Controller
	md    *Renderer
	model string
}

// New wires the web front end to a controller. model is only shown in the
// header.
func New(log *slog.Logger, c *chat.Controller, model string) (*UI, error) {
	t, err := template.New("root").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &UI{
		log:   log,
		tpl:   t,
		chat:  c,
		md:    NewRenderer(),
		model: model,
	}, nil
}

type MsgView struct {
	Role  string
	Label string
	HTML  template.HTML
}

type TranscriptView struct {
	Messages []MsgView
	Loading  bool
}

func (u *UI) transcriptView() TranscriptView {
	visible, loading := u.chat.Transcript().Snapshot()
	out := make([]MsgView, 0, len(visible))
	for _, m := range visible {
		out = append(out, u.msgView(m))
	}
	return TranscriptView{Messages: out, Loading: loading}
}

func (u *UI) msgView(m types.Message) MsgView {
	label := "AI"
	if m.Role == types.RoleUser {
		label = "You"
	}
	return MsgView{Role: string(m.Role), Label: label, HTML: u.md.HTML(m.Content)}
}

func (u *UI) render(w http.ResponseWriter, name string, data any, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := u.tpl.ExecuteTemplate(w, name, data); err != nil {
		u.errTpl(w, err)
	}
}

func (u *UI) errTpl(w http.ResponseWriter, err error) {
	u.log.Error("template execute", "err", err)
	_, _ = w.Write([]byte("<pre>template error: " + template.HTMLEscapeString(err.Error()) + "</pre>"))
}
