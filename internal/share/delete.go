package share

import (
	"context"
	"fmt"
	"net/http"
)

// DeleteVersionController deletes one version of a file after the user confirms.
type DeleteVersionController struct {
	gateway   Gateway
	notifier  Notifier
	confirmer Confirmer
	messages  *Messages
	logger    Logger
	guard     inflight
}

func NewDeleteVersionController(gateway Gateway, notifier Notifier, confirmer Confirmer, messages *Messages, logger Logger) *DeleteVersionController {
	return &DeleteVersionController{
		gateway:   gateway,
		notifier:  notifier,
		confirmer: confirmer,
		messages:  messages,
		logger:    logger,
	}
}

func (c *DeleteVersionController) InFlight(card *FileCard) bool {
	return card != nil && c.guard.busy(card.Delete)
}

// SubmitDelete sends DELETE for the selected version of card. An unselected
// version is reported to the user; a declined confirmation returns ErrDeclined
// without any message. The card is removed once the server confirms.
func (c *DeleteVersionController) SubmitDelete(ctx context.Context, card *FileCard) (*Response, error) {
	if card == nil || card.Delete == nil {
		return nil, fmt.Errorf("delete form: %w", ErrNotFound)
	}
	form := card.Delete

	if !c.guard.acquire(form) {
		c.logger.Debug("delete already in flight", "file_id", form.FileID)
		return nil, ErrInFlight
	}
	defer c.guard.release(form)

	if !form.Version.Selected() {
		err := &ValidationError{Message: c.messages.SelectVersionToDelete}
		c.notifier.Notify(err.Message)
		return nil, err
	}

	if !c.confirmer.Confirm(c.messages.ConfirmDeleteVersion) {
		c.logger.Info("delete declined", "file_id", form.FileID, "version", form.Version.Value)
		return nil, ErrDeclined
	}

	c.logger.Info("deleting file version", "file_id", form.FileID, "version", form.Version.Value)

	resp, err := c.gateway.Call(ctx, Request{
		Action:   form.Action,
		Method:   http.MethodDelete,
		Fields:   form.Fields(),
		Fallback: c.messages.DeleteFailed,
	})
	if err != nil {
		c.logger.Error("delete failed", "file_id", form.FileID, "error", err)
		c.notifier.Notify(c.messages.ErrorPrefix + UserMessage(err, c.messages.DeleteFailed))
		return nil, err
	}

	card.Remove()
	c.notifier.Notify(messageOr(resp.Message, c.messages.DeleteSucceeded))
	return resp, nil
}
