package handlers

import (
	"context"

	"github.com/bargir/dispatch-gateway/internal/model"
	"github.com/bargir/dispatch-gateway/internal/projection"
	xhttp "github.com/bargir/dispatch-gateway/pkg/http"
)

type NotificationService interface {
	Send(ctx context.Context, sender model.Principal, p model.SendMessageRequest) (*model.Message, *model.User, error)
	ListSent(ctx context.Context, sender model.Principal) ([]*model.MessageRow, error)
}

type MessageHandler struct {
	svc NotificationService
}

func NewMessageHandler(notificationService NotificationService) *MessageHandler {
	return &MessageHandler{
		svc: notificationService,
	}
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
	ShipmentID  *int64 `json:"shipment_id"`
	MessageType string `json:"message_type"`
}

func (h *MessageHandler) SendMessage(ctx *xhttp.RequestCtx) {
	sender := mustPrincipal(ctx)
	if sender == nil {
		writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
		return
	}

	var req sendMessageRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	msg, recipient, err := h.svc.Send(ctx, *sender, model.SendMessageRequest{
		RecipientID: req.RecipientID,
		Content:     req.Content,
		ShipmentID:  req.ShipmentID,
		MessageType: model.MessageType(req.MessageType),
	})
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	writeJSON(ctx, xhttp.StatusCreated, projection.MessageReceipt(msg, recipient))
}

func (h *MessageHandler) ListSentMessages(ctx *xhttp.RequestCtx) {
	sender := mustPrincipal(ctx)
	if sender == nil {
		writeError(ctx, xhttp.StatusUnauthorized, "missing bearer token")
		return
	}

	rows, err := h.svc.ListSent(ctx, *sender)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, projection.MessageSummaries(rows))
}
