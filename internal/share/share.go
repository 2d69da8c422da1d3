package share

import (
	"context"
	"fmt"
	"net/http"
)

// ShareController submits share requests for one file version and reflects
// the result on the file's card.
type ShareController struct {
	gateway  Gateway
	notifier Notifier
	messages *Messages
	logger   Logger
	guard    inflight
}

func NewShareController(gateway Gateway, notifier Notifier, messages *Messages, logger Logger) *ShareController {
	return &ShareController{gateway: gateway, notifier: notifier, messages: messages, logger: logger}
}

// InFlight reports whether the card's share form is waiting for a response.
func (c *ShareController) InFlight(card *FileCard) bool {
	return card != nil && c.guard.busy(card.Share)
}

// SubmitShare validates the card's share form and, when it is complete, sends it.
// On success the revoke panel is shown, the share form is reset and the revoke
// form's selectors are cleared. On failure nothing on the card changes.
func (c *ShareController) SubmitShare(ctx context.Context, card *FileCard) (*Response, error) {
	if card == nil || card.Share == nil {
		return nil, fmt.Errorf("share form: %w", ErrNotFound)
	}
	form := card.Share

	if !c.guard.acquire(form) {
		c.logger.Debug("share already in flight", "file_id", form.FileID)
		return nil, ErrInFlight
	}
	defer c.guard.release(form)

	if err := c.validate(form); err != nil {
		c.notifier.Notify(err.Message)
		return nil, err
	}

	c.logger.Info("sharing file version",
		"file_id", form.FileID, "version", form.Version.Value, "recipient", form.Recipient)

	resp, err := c.gateway.Call(ctx, Request{
		Action:   form.Action,
		Method:   http.MethodPost,
		Fields:   form.Fields(),
		Fallback: c.messages.ShareFailed,
	})
	if err != nil {
		c.logger.Error("share failed", "file_id", form.FileID, "error", err)
		c.notifier.Notify(c.messages.ErrorPrefix + UserMessage(err, c.messages.ShareFailed))
		return nil, err
	}

	c.notifier.Notify(messageOr(resp.Message, c.messages.ShareSucceeded))

	if !card.ShowRevoke() {
		c.logger.Debug("card has no revoke panel", "file_id", form.FileID)
	}
	form.Reset()
	if card.Revoke != nil && card.Revoke.Form != nil {
		card.Revoke.Form.ResetSelectors()
	}

	return resp, nil
}

func (c *ShareController) validate(form *ShareForm) *ValidationError {
	switch {
	case form.FileID == "":
		return &ValidationError{Message: c.messages.FileRequired}
	case form.Recipient == "":
		return &ValidationError{Message: c.messages.RecipientRequired}
	case !form.Version.Selected():
		return &ValidationError{Message: c.messages.SelectVersionToShare}
	}
	return nil
}
