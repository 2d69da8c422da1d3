package share

import "context"

// Field is one name/value pair of a submitted form, kept in form order.
type Field struct {
	Name  string
	Value string
}

// Request describes one mutating call issued on behalf of a form.
type Request struct {
	// Action is the endpoint declared by the form, usually a server-relative path.
	Action string
	// Method is http.MethodPost or http.MethodDelete.
	Method string
	Fields []Field
	// Fallback is the message used when the server gives no readable error.
	Fallback string
}

// Value returns the first field named name, or "".
func (r Request) Value(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Response is the success body of a share, revoke or delete call.
// RemainingShares is nil when the server omitted it.
type Response struct {
	Message         string `json:"message,omitempty"`
	RemainingShares *int   `json:"remainingShares,omitempty"`
}

// Gateway performs an authenticated mutating request and normalizes the result.
// Implementations return a *RemoteError for every failure.
type Gateway interface {
	Call(ctx context.Context, req Request) (*Response, error)
}

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}
