// Conversation HTTP handlers.
//
// This file exposes the buyer/administrator conversations:
//   - GET  /admin/chats      (inbox, administrators only)
//   - GET  /chat/:user_id    (read a conversation)
//   - POST /chat/:user_id    (post a message)
//
// A user may only use their own conversation; administrators may use any.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/apple-market/internal/domain"
	"github.com/tbourn/apple-market/internal/utils"
)

// PostMessageRequest is the payload for posting a message.
type PostMessageRequest struct {
	Text string `json:"text" form:"text" example:"Is the iPhone 13 still available?"`
}

// ConversationResponse is one conversation in posting order.
type ConversationResponse struct {
	UserID   uint                 `json:"user_id"`
	Messages []domain.ChatMessage `json:"messages"`
}

// PostMessageResponse carries the new message and the updated conversation.
type PostMessageResponse struct {
	Message      domain.ChatMessage   `json:"message"`
	UserID       uint                 `json:"user_id"`
	Conversation []domain.ChatMessage `json:"messages"`
}

// InboxResponse lists the conversations that have messages.
type InboxResponse struct {
	Conversations []domain.ConversationSummary `json:"conversations"`
}

func conversationID(c *gin.Context) (uint, bool) {
	id, err := utils.ParseID(c.Param("user_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return 0, false
	}
	return id, true
}

func conversationETag(userID uint, count int64, maxID uint) string {
	return fmt.Sprintf(`W/"chat:%d:%d:%d"`, userID, count, maxID)
}

// Inbox godoc
// @ID          chatInbox
// @Summary     Conversation inbox
// @Description Lists every conversation with at least one message, most recently active first. Administrators only.
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  handlers.InboxResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Administrators only"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/chats [get]
func (h *Handlers) Inbox(c *gin.Context) {
	p, allowed := requireAdmin(c)
	if !allowed {
		return
	}
	items, err := h.messages.Inbox(c.Request.Context(), p)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, InboxResponse{Conversations: items})
}

// Conversation godoc
// @ID          getConversation
// @Summary     Read a conversation
// @Description Returns the messages of the conversation of user_id in posting order.
// @Tags        Chat
// @Produce     json
// @Param       user_id        path    int     true   "Conversation (user) ID"  minimum(1)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.ConversationResponse
// @Header      200  {string}  ETag  "Weak ETag for current conversation"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid user id"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not your conversation"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/{user_id} [get]
func (h *Handlers) Conversation(c *gin.Context) {
	p, allowed := requireLogin(c)
	if !allowed {
		return
	}
	uid, valid := conversationID(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()

	// Stats also enforces access, so a refused caller never sees a validator.
	count, maxID, err := h.messages.Stats(ctx, p, uid)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	etag := conversationETag(uid, count, maxID)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && etagMatches(inm, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	msgs, err := h.messages.Conversation(ctx, p, uid)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ConversationResponse{UserID: uid, Messages: msgs})
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Post a message
// @Description Appends a message to the conversation of user_id and returns it with the updated conversation. The sender is "admin" for administrators and "user" otherwise.
// @Tags        Chat
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Param       user_id  path  int                          true  "Conversation (user) ID"  minimum(1)
// @Param       body     body  handlers.PostMessageRequest  true  "Message"
// @Success     201  {object}  handlers.PostMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long message"
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not your conversation"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/{user_id} [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	p, allowed := requireLogin(c)
	if !allowed {
		return
	}
	uid, valid := conversationID(c)
	if !valid {
		return
	}
	var req PostMessageRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messages.Post(ctx, p, uid, req.Text)
	if err != nil {
		failErr(c, err, ErrCodeCreateFailed)
		return
	}
	msgs, err := h.messages.Conversation(ctx, p, uid)
	if err != nil {
		failErr(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusCreated, PostMessageResponse{Message: *msg, UserID: uid, Conversation: msgs})
}
