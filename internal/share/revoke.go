package share

import (
	"context"
	"fmt"
	"net/http"
	"slices"
)

// RevokeContext says which view fragment a revoke control belongs to.
type RevokeContext int

const (
	UnknownContext RevokeContext = iota
	// DirectoryShareContext is a row of the shared-directories table.
	DirectoryShareContext
	// FileShareContext is the revoke panel of a file card.
	FileShareContext
)

func (c RevokeContext) String() string {
	switch c {
	case DirectoryShareContext:
		return "directory"
	case FileShareContext:
		return "file"
	default:
		return "unknown"
	}
}

// RevokeBinding ties a revoke control to its context and view fragment.
// The context is fixed when the binding is created; fields are read from
// the live form at submit time.
type RevokeBinding struct {
	context RevokeContext
	action  string
	fields  func() []Field

	card  *FileCard
	table *DirectoryShareTable
	row   *DirectoryShareRow
}

// BindFileRevoke binds the revoke form of a file card.
func BindFileRevoke(card *FileCard) (*RevokeBinding, error) {
	if card == nil || card.Revoke == nil || card.Revoke.Form == nil {
		return nil, fmt.Errorf("revoke form: %w", ErrNotFound)
	}
	form := card.Revoke.Form
	return &RevokeBinding{
		context: FileShareContext,
		action:  form.Action,
		fields:  form.Fields,
		card:    card,
	}, nil
}

// BindDirectoryRevoke binds the revoke control of one row of table.
func BindDirectoryRevoke(table *DirectoryShareTable, row *DirectoryShareRow) (*RevokeBinding, error) {
	if table == nil || row == nil {
		return nil, fmt.Errorf("directory share row: %w", ErrNotFound)
	}
	return &RevokeBinding{
		context: DirectoryShareContext,
		action:  row.Action,
		fields:  row.Fields,
		table:   table,
		row:     row,
	}, nil
}

// BindRevoke binds a revoke form found outside any known container.
// Submitting it still reaches the server but updates nothing locally.
func BindRevoke(action string, fields []Field) *RevokeBinding {
	fields = slices.Clone(fields)
	return &RevokeBinding{
		context: UnknownContext,
		action:  action,
		fields:  func() []Field { return fields },
	}
}

func (b *RevokeBinding) Context() RevokeContext { return b.context }

// RevokeController submits revoke requests and removes or hides the view
// fragment the request came from once the server confirms it.
type RevokeController struct {
	gateway  Gateway
	notifier Notifier
	messages *Messages
	logger   Logger
	guard    inflight
}

func NewRevokeController(gateway Gateway, notifier Notifier, messages *Messages, logger Logger) *RevokeController {
	return &RevokeController{gateway: gateway, notifier: notifier, messages: messages, logger: logger}
}

func (c *RevokeController) InFlight(b *RevokeBinding) bool {
	return b != nil && c.guard.busy(b)
}

// SubmitRevoke posts the bound form's fields. After a successful response:
//   - DirectoryShareContext removes the row and hides the table once empty;
//   - FileShareContext hides the panel only when remainingShares is 0;
//   - UnknownContext changes nothing.
func (c *RevokeController) SubmitRevoke(ctx context.Context, b *RevokeBinding) (*Response, error) {
	if b == nil {
		return nil, fmt.Errorf("revoke binding: %w", ErrNotFound)
	}
	if !c.guard.acquire(b) {
		c.logger.Debug("revoke already in flight", "action", b.action)
		return nil, ErrInFlight
	}
	defer c.guard.release(b)

	fields := b.fields()
	c.logger.Info("revoking share", "context", b.context.String(), "action", b.action)

	resp, err := c.gateway.Call(ctx, Request{
		Action:   b.action,
		Method:   http.MethodPost,
		Fields:   fields,
		Fallback: c.messages.RevokeFailed,
	})
	if err != nil {
		c.logger.Error("revoke failed", "context", b.context.String(), "error", err)
		c.notifier.Notify(c.messages.ErrorPrefix + UserMessage(err, c.messages.RevokeFailed))
		return nil, err
	}

	c.notifier.Notify(messageOr(resp.Message, c.messages.RevokeSucceeded))

	switch b.context {
	case DirectoryShareContext:
		if !b.table.RemoveRow(b.row) {
			c.logger.Debug("directory share row already removed", "directory_id", b.row.DirectoryID)
		}
	case FileShareContext:
		if resp.RemainingShares != nil && *resp.RemainingShares == 0 {
			b.card.HideRevoke()
		}
	default:
		c.logger.Warn("no view update for revoke context", "action", b.action)
	}

	return resp, nil
}
