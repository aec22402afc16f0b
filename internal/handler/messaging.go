package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/service"
)

// MessagingHandler serves buyer/seller conversations. The client
// either polls Conversations and Messages on the configured cadences
// or subscribes to Stream, which runs the same cadences server-side
// and pushes refreshes as server-sent events. The cadences are
// advertised on the health endpoint so polling clients pick them up
// instead of hardcoding them.
type MessagingHandler struct {
	Messaging *service.Messaging
	MsgPoll   time.Duration
	ListPoll  time.Duration
}

func NewMessagingHandler(messaging *service.Messaging, msgPoll, listPoll time.Duration) *MessagingHandler {
	return &MessagingHandler{Messaging: messaging, MsgPoll: msgPoll, ListPoll: listPoll}
}

type openConversationReq struct {
	OtherUserID string `json:"otherUserId"`
	VehicleID   string `json:"vehicleId"`
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// Healthz reports whether the messaging tables are reachable, so the
// client can show a setup error instead of an empty inbox.
func (h *MessagingHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Messaging.Healthy(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "El servicio de mensajería no está configurado"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":                 "ok",
		"messagePollMs":          h.MsgPoll.Milliseconds(),
		"conversationListPollMs": h.ListPoll.Milliseconds(),
	})
}

// Open returns the conversation with another user, creating it on
// first contact.
func (h *MessagingHandler) Open(c echo.Context) error {
	var req openConversationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OtherUserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "otherUserId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	conv, err := h.Messaging.GetOrCreateConversation(ctx, middleware.UserID(c), req.OtherUserID, req.VehicleID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// List returns the caller's conversations, most recent first.
func (h *MessagingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	convs, err := h.Messaging.UserConversations(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, convs)
}

// Messages returns a conversation's messages for the caller, marking
// the other participant's messages as read.
func (h *MessagingHandler) Messages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messaging.ConversationMessages(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// Send appends a message to a conversation.
func (h *MessagingHandler) Send(c echo.Context) error {
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msg, err := h.Messaging.Send(ctx, c.Param("id"), middleware.UserID(c), req.Content)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Stream pushes messaging refreshes as server-sent events, so a
// connected client gets the polling cadence server-side instead of
// running its own timers. With a conversationId query parameter the
// open conversation's messages are streamed on the message cadence;
// otherwise the conversation list is streamed on the list cadence.
// The stream runs until the client disconnects.
func (h *MessagingHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)
	conversationID := c.QueryParam("conversationId")

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	events := make(chan []byte, 1)
	poll := func(ctx context.Context) {
		var payload any
		var err error
		if conversationID != "" {
			payload, err = h.Messaging.ConversationMessages(ctx, conversationID, userID)
		} else {
			payload, err = h.Messaging.UserConversations(ctx, userID)
		}
		if err != nil {
			return
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return
		}
		select {
		case events <- body:
		case <-ctx.Done():
		}
	}

	poller := service.NewPoller(h.MsgPoll, h.ListPoll)
	if conversationID != "" {
		poller.StartConversation(ctx, poll)
	} else {
		poller.StartList(ctx, poll)
	}
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case body := <-events:
			if _, err := fmt.Fprintf(res, "data: %s\n\n", body); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// Unread returns the caller's total unread count for the navigation
// badge.
func (h *MessagingHandler) Unread(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Messaging.UnreadCount(ctx, middleware.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
