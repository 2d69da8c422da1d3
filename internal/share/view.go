package share

import (
	"fmt"
	"slices"
	"sync"
)

// Option is one entry of a Selector.
type Option struct {
	Value string
	Label string
}

// Selector models a dropdown. An empty Value means nothing is selected.
type Selector struct {
	Options []Option
	Value   string
}

// Select picks value. When the selector lists options, value must be one of them.
func (s *Selector) Select(value string) error {
	if value == "" || len(s.Options) == 0 {
		s.Value = value
		return nil
	}
	for _, o := range s.Options {
		if o.Value == value {
			s.Value = value
			return nil
		}
	}
	return fmt.Errorf("option %q: %w", value, ErrNotFound)
}

// Reset returns the selector to its unselected state.
func (s *Selector) Reset() { s.Value = "" }

// Selected reports whether a value is selected.
func (s *Selector) Selected() bool { return s.Value != "" }

// ShareForm is the per-file form that grants a version to a recipient.
type ShareForm struct {
	Action    string
	Username  string
	FileID    string
	Recipient string
	Version   Selector
}

// Fields returns the payload in the order the server expects.
func (f *ShareForm) Fields() []Field {
	return []Field{
		{Name: "username", Value: f.Username},
		{Name: "fileId", Value: f.FileID},
		{Name: "sharedWithEmail", Value: f.Recipient},
		{Name: "version", Value: f.Version.Value},
	}
}

// Reset clears the user-editable inputs. Hidden inputs keep their values.
func (f *ShareForm) Reset() {
	f.Recipient = ""
	f.Version.Reset()
}

// RevokeForm identifies one grant of a file by version and recipient.
type RevokeForm struct {
	ID        string
	Action    string
	FileID    string
	Username  string
	Version   Selector
	Recipient Selector
}

func (f *RevokeForm) Fields() []Field {
	return []Field{
		{Name: "fileId", Value: f.FileID},
		{Name: "sharedWithEmail", Value: f.Recipient.Value},
		{Name: "username", Value: f.Username},
		{Name: "version", Value: f.Version.Value},
	}
}

// ResetSelectors leaves both dropdowns unselected.
func (f *RevokeForm) ResetSelectors() {
	f.Version.Reset()
	f.Recipient.Reset()
}

// RevokePanel is the container of a file's revoke form.
type RevokePanel struct {
	Visible bool
	Form    *RevokeForm
}

// DeleteForm deletes one version of a file.
type DeleteForm struct {
	Action   string
	FileID   string
	Username string
	Version  Selector
}

func (f *DeleteForm) Fields() []Field {
	return []Field{
		{Name: "versionNumber", Value: f.Version.Value},
		{Name: "username", Value: f.Username},
	}
}

// FileCard groups everything rendered for one owned file.
// Visibility changes go through its methods so that concurrent
// share and revoke completions on the same card do not race.
type FileCard struct {
	FileID string
	Name   string
	Share  *ShareForm
	Revoke *RevokePanel
	Delete *DeleteForm

	mu      sync.Mutex
	removed bool
}

// ShowRevoke makes the revoke panel visible. It reports whether a panel exists.
func (c *FileCard) ShowRevoke() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Revoke == nil {
		return false
	}
	c.Revoke.Visible = true
	return true
}

// HideRevoke hides the revoke panel. Hiding an already hidden panel is a no-op.
func (c *FileCard) HideRevoke() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Revoke == nil {
		return false
	}
	c.Revoke.Visible = false
	return true
}

// RevokeVisible reports whether the revoke panel is shown.
func (c *FileCard) RevokeVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Revoke != nil && c.Revoke.Visible && !c.removed
}

// Remove takes the card off the page.
func (c *FileCard) Remove() {
	c.mu.Lock()
	c.removed = true
	c.mu.Unlock()
}

func (c *FileCard) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// DirectoryShareRow is one directory grant in the shared-directories table.
type DirectoryShareRow struct {
	DirectoryID string
	Recipient   string
	Action      string
}

func (r *DirectoryShareRow) Fields() []Field {
	return []Field{
		{Name: "directoryId", Value: r.DirectoryID},
		{Name: "sharedWithUserEmail", Value: r.Recipient},
	}
}

// DirectoryShareTable holds the directory grant rows. An empty table is
// never shown: removing the last row hides it.
type DirectoryShareTable struct {
	mu      sync.Mutex
	visible bool
	rows    []*DirectoryShareRow
}

// NewDirectoryShareTable builds a table; it is visible only when it has rows.
func NewDirectoryShareTable(rows ...*DirectoryShareRow) *DirectoryShareTable {
	return &DirectoryShareTable{rows: rows, visible: len(rows) > 0}
}

func (t *DirectoryShareTable) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

func (t *DirectoryShareTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Rows returns a snapshot of the current rows.
func (t *DirectoryShareTable) Rows() []*DirectoryShareRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rows)
}

// Find returns the row for directoryID and recipient, or nil.
func (t *DirectoryShareTable) Find(directoryID, recipient string) *DirectoryShareRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if r.DirectoryID == directoryID && r.Recipient == recipient {
			return r
		}
	}
	return nil
}

// RemoveRow deletes row and hides the table once it is empty.
// It reports whether the row was still present.
func (t *DirectoryShareTable) RemoveRow(row *DirectoryShareRow) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := slices.Index(t.rows, row)
	if i >= 0 {
		t.rows = slices.Delete(t.rows, i, i+1)
	}
	if len(t.rows) == 0 {
		t.visible = false
	}
	return i >= 0
}
