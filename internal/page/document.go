// Package page reads the server-rendered pages the share actions live on
// into the view model the controllers operate on.
package page

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sharectl/internal/share"
)

// Document is one parsed page.
type Document struct {
	root *html.Node
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseBytes is Parse over an in-memory page.
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// Meta returns the content of <meta name=name>, or "".
func (d *Document) Meta(name string) string {
	if n := find(d.root, byName(atom.Meta, name)); n != nil {
		return attr(n, "content")
	}
	return ""
}

// FilesPage is the owner's view: file cards, the shared-directories table,
// and any revoke form found outside both.
type FilesPage struct {
	Cards       []*share.FileCard
	Directories *share.DirectoryShareTable
	Unbound     []*share.RevokeBinding
}

// Card returns the card of fileID.
func (p *FilesPage) Card(fileID string) (*share.FileCard, error) {
	for _, c := range p.Cards {
		if c.FileID == fileID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("file %s: %w", fileID, share.ErrNotFound)
}

// Files reads the file cards and shared-directories table of d.
func (d *Document) Files() *FilesPage {
	p := &FilesPage{}

	for _, n := range findAll(d.root, byClass("file-card")) {
		p.Cards = append(p.Cards, parseCard(n))
	}

	var rows []*share.DirectoryShareRow
	if table := find(d.root, byClass("shared-directories-table")); table != nil {
		for _, tr := range findAll(table, byAtom(atom.Tr)) {
			if row := parseDirectoryRow(tr); row != nil {
				rows = append(rows, row)
			}
		}
	}
	p.Directories = share.NewDirectoryShareTable(rows...)

	// A revoke form's context comes from its ancestry.
	for _, form := range findAll(d.root, byClass("revoke-form")) {
		if closest(form, byClass("shared-directories-table")) != nil || closest(form, byClass("file-card")) != nil {
			continue
		}
		p.Unbound = append(p.Unbound, share.BindRevoke(attr(form, "action"), formFields(form)))
	}

	return p
}

func parseCard(n *html.Node) *share.FileCard {
	card := &share.FileCard{
		FileID: attr(n, "data-file-id"),
		Name:   text(find(n, byClass("file-name"))),
	}

	if f := find(n, byClass("share-form")); f != nil {
		card.Share = &share.ShareForm{
			Action:    attr(f, "action"),
			Username:  inputValue(f, "username"),
			FileID:    inputValue(f, "fileId"),
			Recipient: inputValue(f, "sharedWithEmail"),
			Version:   selector(f, "version"),
		}
		if card.FileID == "" {
			card.FileID = card.Share.FileID
		}
	}

	if f := find(n, byClass("revoke-form")); f != nil {
		form := &share.RevokeForm{
			ID:        attr(f, "id"),
			Action:    attr(f, "action"),
			FileID:    inputValue(f, "fileId"),
			Username:  inputValue(f, "username"),
			Version:   selector(f, "version"),
			Recipient: selector(f, "sharedWithEmail"),
		}
		visible := true
		if parent := parentElement(f); parent != nil && hidden(parent) {
			visible = false
		}
		card.Revoke = &share.RevokePanel{Visible: visible, Form: form}
		if card.FileID == "" {
			card.FileID = form.FileID
		}
	}

	if f := find(n, byClass("delete-form")); f != nil {
		form := &share.DeleteForm{
			Action:   attr(f, "action"),
			Username: inputValue(f, "username"),
			Version:  selector(f, "versionNumber"),
		}
		if btn := find(f, byClass("delete-btn")); btn != nil {
			form.FileID = attr(btn, "data-file-id")
		}
		if form.FileID == "" {
			form.FileID = card.FileID
		}
		card.Delete = form
		if card.FileID == "" {
			card.FileID = form.FileID
		}
	}

	return card
}

func parseDirectoryRow(tr *html.Node) *share.DirectoryShareRow {
	form := find(tr, byClass("revoke-form"))
	if form == nil {
		return nil
	}
	return &share.DirectoryShareRow{
		DirectoryID: inputValue(form, "directoryId"),
		Recipient:   inputValue(form, "sharedWithUserEmail"),
		Action:      attr(form, "action"),
	}
}

// SharedFiles reads the shared-with-me page. Everything starts visible.
func (d *Document) SharedFiles() *share.SharedFilesView {
	view := &share.SharedFilesView{}

	container := find(d.root, func(n *html.Node) bool { return attr(n, "id") == "shared-files-container" })
	if container == nil {
		container = d.root
	}

	for _, g := range findAll(container, byClass("email-group")) {
		group := &share.EmailGroup{
			Email:   text(find(find(g, byClass("section-title")), byAtom(atom.Span))),
			Visible: true,
		}
		for _, dn := range findAll(g, byClass("directory-group")) {
			dir := &share.DirectoryGroup{
				Title:   text(find(find(dn, byClass("directory-title")), byAtom(atom.Span))),
				Visible: true,
			}
			for _, fc := range findAll(dn, byClass("file-card")) {
				dir.Files = append(dir.Files, &share.SharedFile{
					Name:    text(find(fc, byClass("file-name"))),
					Visible: true,
				})
			}
			group.Directories = append(group.Directories, dir)
		}
		view.Groups = append(view.Groups, group)
	}
	view.NoFilesVisible = len(view.Groups) == 0
	return view
}

func inputValue(form *html.Node, name string) string {
	if n := find(form, byName(atom.Input, name)); n != nil {
		return attr(n, "value")
	}
	return ""
}

// selector reads <select name=name>. Options with an empty value are placeholders.
func selector(form *html.Node, name string) share.Selector {
	var s share.Selector
	sel := find(form, byName(atom.Select, name))
	if sel == nil {
		return s
	}
	for _, o := range findAll(sel, byAtom(atom.Option)) {
		value := attr(o, "value")
		if value == "" {
			continue
		}
		s.Options = append(s.Options, share.Option{Value: value, Label: text(o)})
		if hasAttr(o, "selected") {
			s.Value = value
		}
	}
	return s
}

// formFields collects the named inputs and selects of form in document order.
func formFields(form *html.Node) []share.Field {
	var fields []share.Field
	for _, n := range findAll(form, func(n *html.Node) bool {
		return (n.DataAtom == atom.Input || n.DataAtom == atom.Select) && attr(n, "name") != ""
	}) {
		value := attr(n, "value")
		if n.DataAtom == atom.Select {
			value = selector(form, attr(n, "name")).Value
		}
		fields = append(fields, share.Field{Name: attr(n, "name"), Value: value})
	}
	return fields
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
