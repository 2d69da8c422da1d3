package app

import (
	"errors"

	"sharectl/internal/share"
)

// statusOf maps the outcome of a mutating command to its journal status.
func statusOf(err error) string {
	switch {
	case err == nil:
		return share.StatusSuccess
	case errors.Is(err, share.ErrValidation):
		return share.StatusInvalid
	case errors.Is(err, share.ErrDeclined):
		return share.StatusDeclined
	default:
		return share.StatusError
	}
}

// begin journals the start of a mutating command.
func (a *ShareApp) begin(kind, target, version, recipient string) *share.Operation {
	op := &share.Operation{
		OpID:      a.opID,
		Kind:      kind,
		Target:    target,
		Version:   version,
		Recipient: recipient,
		StartedAt: a.clock.Now(),
	}
	if err := a.db.CreateOperation(op); err != nil {
		a.logger.Error("journaling operation", "kind", kind, "error", err)
		return nil
	}
	return op
}

// finish records the outcome of op. A nil op was never journaled.
func (a *ShareApp) finish(op *share.Operation, resp *share.Response, err error) {
	if op == nil {
		return
	}
	op.Status = statusOf(err)
	switch {
	case err != nil:
		op.Message = share.UserMessage(err, "")
	case resp != nil:
		op.Message = resp.Message
	}
	now := a.clock.Now()
	op.FinishedAt = &now
	if ferr := a.db.FinishOperation(op.ID, op.Status, op.Message, now); ferr != nil {
		a.logger.Error("finishing operation", "id", op.ID, "error", ferr)
	}
}
