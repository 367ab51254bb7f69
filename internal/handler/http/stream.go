package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
)

// Subscriber is the read side of the realtime hub.
type Subscriber interface {
	Subscribe(topic string) (<-chan realtime.Event, func())
}

type StreamHandler interface {
	// Token issues a short-lived token for EventSource clients
	Token(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type streamHandlerImpl struct {
	hub          Subscriber
	jwtService   jwt.Service
	pingInterval time.Duration
}

func NewStreamHandler(hub Subscriber, jwtService jwt.Service) StreamHandler {
	return &streamHandlerImpl{
		hub:          hub,
		jwtService:   jwtService,
		pingInterval: 30 * time.Second,
	}
}

var streamTopics = []string{
	realtime.TopicAttendance,
	realtime.TopicLeaves,
	realtime.TopicSalaries,
	realtime.TopicNotifications,
}

// resolveTopic maps the requested topic to the hub topic. Admins get the
// company-wide feed, employees their own; notifications are always personal.
func resolveTopic(topic, userID string, isAdmin bool) (string, bool) {
	known := false
	for _, t := range streamTopics {
		if t == topic {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}
	if isAdmin && topic != realtime.TopicNotifications {
		return topic, true
	}
	return realtime.UserTopic(topic, userID), true
}

// Token implements StreamHandler.
func (h *streamHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := middleware.Claims(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID, isAdmin)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, StreamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream handles the SSE connection. The token comes from the query string
// because EventSource cannot send headers.
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, isAdmin, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	topic, ok := resolveTopic(r.URL.Query().Get("topic"), userID, isAdmin)
	if !ok {
		response.BadRequest(w, "Unknown topic", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, unsubscribe := h.hub.Subscribe(topic)
	defer unsubscribe()

	slog.Debug("stream connected", "user_id", userID, "topic", topic)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"topic\":%q}\n\n", topic)
	flusher.Flush()

	keepalive := time.NewTicker(h.pingInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("stream event dropped", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			slog.Debug("stream disconnected", "user_id", userID, "topic", topic)
			return
		}
	}
}
