// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/iyunix/go-ragchat/internal/domain"
	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
)

type ChatHandler struct {
	ChatService chatservice.Service
	logger      chatservice.Logger
}

func NewChatHandler(cs chatservice.Service, logger chatservice.Logger) (*ChatHandler, error) {
	if cs == nil {
		return nil, errors.New("chat service is required")
	}
	return &ChatHandler{ChatService: cs, logger: logger}, nil
}

// ListChats returns chats newest first. With ?limit (and optional ?offset)
// it returns one page and reports the overall count in X-Total-Count.
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	var (
		chats []domain.Chat
		err   error
	)
	query := r.URL.Query()
	if query.Has("limit") {
		limit, convErr := strconv.Atoi(query.Get("limit"))
		offset := 0
		if convErr == nil && query.Has("offset") {
			offset, convErr = strconv.Atoi(query.Get("offset"))
		}
		if convErr != nil {
			writeError(w, "Invalid pagination parameters", http.StatusBadRequest)
			return
		}
		var total int64
		chats, total, err = h.ChatService.ListChatsPage(r.Context(), limit, offset)
		if err == nil {
			w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
		}
	} else {
		chats, err = h.ChatService.ListChats(r.Context())
	}
	if err != nil {
		h.logger.Error("list chats failed", "error", err)
		writeServiceError(w, err)
		return
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.CreateChat(r.Context(), req.Title)
	if err != nil {
		h.logger.Error("create chat failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

// GetChat returns the chat with its full history.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// GetChatMessages returns only the history of a chat.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.GetChat(r.Context(), chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	messages := chat.History
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleChatMessage runs one synchronous turn and returns the reply.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.Interact(r.Context(), chatID, req.Message)
	if err != nil {
		h.logger.Error("interaction failed", "chat_id", chatID, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply":   result.Reply,
		"message": result.AssistantMessage,
		"sources": result.Sources,
	})
}

// ClearHistory empties a chat's transcript when clearing is enabled.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.ClearHistory(r.Context(), chatID); err != nil {
		h.logger.Error("clear history failed", "chat_id", chatID, "error", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteChat(r.Context(), chatID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
