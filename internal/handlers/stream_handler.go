// File: internal/handlers/stream_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
)

// StreamChatSSE streams the reply to ?prompt= as Server-Sent Events.
func (h *ChatHandler) StreamChatSSE(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, r.URL.Query().Get("prompt"))
}

// StreamChatLegacy serves /chat-stream/{id}?userPrompt=.
func (h *ChatHandler) StreamChatLegacy(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, r.URL.Query().Get("userPrompt"))
}

func (h *ChatHandler) stream(w http.ResponseWriter, r *http.Request, prompt string) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(prompt) == "" {
		writeError(w, "Prompt required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	events, err := h.ChatService.InteractStreaming(ctx, chatID, prompt)
	if err != nil {
		// Nothing has been written yet, so a plain status still works.
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	finished := false
	for event := range events {
		finished = event.Terminal()
		switch event.Type {
		case chatservice.EventToken:
			sendSSE(w, flusher, "token", event.Token)
		case chatservice.EventSources:
			sendSSE(w, flusher, "sources", event.Sources)
		case chatservice.EventError:
			h.logger.Error("stream failed", "chat_id", chatID, "error", event.Err)
			sendSSE(w, flusher, "error", map[string]string{"error": messageFor(statusFor(event.Err), event.Err)})
		case chatservice.EventComplete:
			payload := map[string]interface{}{"reply": event.Reply, "sources": event.Sources}
			if event.Message != nil {
				payload["message_id"] = event.Message.ID
			}
			sendSSE(w, flusher, "done", payload)
		}
	}
	if !finished {
		h.logger.Info("stream closed before a result", "chat_id", chatID)
	}
}

// sendSSE writes one named event with a JSON payload.
func sendSSE(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
