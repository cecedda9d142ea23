// File: internal/handlers/page_handlers.go
package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/iyunix/go-ragchat/internal/domain"
	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template cache to avoid parsing templates on every request
var (
	templateCache     map[string]*template.Template
	templateCacheOnce sync.Once
)

var templateFuncs = template.FuncMap{
	"markdown": renderMarkdown,
	"isUser":   func(r domain.Role) bool { return r == domain.RoleUser },
}

// loadTemplateCache creates separate template sets for each page
func loadTemplateCache() {
	templateCache = make(map[string]*template.Template)

	for _, tmpl := range []string{"chat.html", "error.html"} {
		ts, err := template.New(tmpl).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+tmpl)
		if err != nil {
			log.Fatalf("Error parsing %s: %v", tmpl, err)
		}
		templateCache[tmpl] = ts
	}
}

// renderTemplate renders into a buffer first so a failing template never
// leaves a half-written page behind.
func renderTemplate(w http.ResponseWriter, status int, tmpl string, data map[string]interface{}) {
	templateCacheOnce.Do(loadTemplateCache)
	addSecurityHeaders(w)

	t, ok := templateCache[tmpl]
	if !ok {
		log.Printf("Template %s not found in cache", tmpl)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Template render error for %s: %v", tmpl, err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

// renderMarkdown turns an assistant reply into HTML. Raw HTML in the reply
// is dropped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("static assets: %v", err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// PageHandler serves the server-rendered chat interface.
type PageHandler struct {
	ChatService chatservice.Service
	logger      chatservice.Logger
}

func NewPageHandler(cs chatservice.Service, logger chatservice.Logger) *PageHandler {
	return &PageHandler{ChatService: cs, logger: logger}
}

// ShowIndexPage lists all chats with no chat selected.
func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	chats, err := h.ChatService.ListChats(r.Context())
	if err != nil {
		h.logger.Error("list chats failed", "error", err)
		h.ShowErrorPage(w, http.StatusInternalServerError, "Something went wrong", "The chat list could not be loaded.")
		return
	}
	renderTemplate(w, http.StatusOK, "chat.html", map[string]interface{}{"Chats": chats})
}

// ShowChatPage lists all chats and shows the selected one.
func (h *PageHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		h.ShowErrorPage(w, http.StatusBadRequest, "Invalid chat", "The chat id is not valid.")
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), chatID)
	if err != nil {
		h.showServiceError(w, err)
		return
	}
	chats, err := h.ChatService.ListChats(r.Context())
	if err != nil {
		h.showServiceError(w, err)
		return
	}

	renderTemplate(w, http.StatusOK, "chat.html", map[string]interface{}{
		"Chats": chats,
		"Chat":  chat,
	})
}

func (h *PageHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	chat, err := h.ChatService.CreateChat(r.Context(), title)
	if err != nil {
		h.showServiceError(w, err)
		return
	}
	http.Redirect(w, r, chatURL(chat.ID), http.StatusSeeOther)
}

func (h *PageHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		h.ShowErrorPage(w, http.StatusBadRequest, "Invalid chat", "The chat id is not valid.")
		return
	}
	if err := h.ChatService.DeleteChat(r.Context(), chatID); err != nil {
		h.showServiceError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// TalkToModel runs one synchronous turn and redirects back to the chat.
func (h *PageHandler) TalkToModel(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		h.ShowErrorPage(w, http.StatusBadRequest, "Invalid chat", "The chat id is not valid.")
		return
	}

	prompt := r.FormValue("prompt")
	if strings.TrimSpace(prompt) == "" {
		http.Redirect(w, r, chatURL(chatID), http.StatusSeeOther)
		return
	}

	if _, err := h.ChatService.Interact(r.Context(), chatID, prompt); err != nil {
		h.logger.Error("interaction failed", "chat_id", chatID, "error", err)
		h.showServiceError(w, err)
		return
	}
	http.Redirect(w, r, chatURL(chatID), http.StatusSeeOther)
}

func (h *PageHandler) showServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	h.ShowErrorPage(w, status, http.StatusText(status), messageFor(status, err))
}

func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, code int, message, description string) {
	renderTemplate(w, code, "error.html", map[string]interface{}{
		"Code":        code,
		"Message":     message,
		"Description": description,
	})
}

func chatURL(id uint) string {
	return "/chat/" + uintToString(id)
}
