package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"sharectl/internal/config"
	"sharectl/internal/database"
	"sharectl/internal/encryption"
	"sharectl/internal/gateway"
	"sharectl/internal/page"
	"sharectl/internal/share"
)

// Options override the collaborators NewShareApp would otherwise build.
// Notifier and Confirmer are required.
type Options struct {
	Notifier  share.Notifier
	Confirmer share.Confirmer
	Stderr    io.Writer
	Clock     share.Clock
	IDs       share.IDGenerator
	Transport http.RoundTripper
}

// ShareApp is the application layer between the CLI and the share controllers.
// It constructs all dependencies from config, loads the page each action lives
// on, journals every mutating command, and manages the DB lifecycle on Close.
type ShareApp struct {
	cfg       *config.Config
	db        share.Database
	sealer    share.Sealer
	client    *gateway.Client
	pages     *page.Session
	messages  *share.Messages
	notifier  share.Notifier
	confirmer share.Confirmer
	logger    share.Logger
	clock     share.Clock
	opID      string
	logFile   *os.File

	shares  *share.ShareController
	revokes *share.RevokeController
	deletes *share.DeleteVersionController
}

// NewShareApp creates a fully wired ShareApp from the given config.
// The caller must call Close when done.
func NewShareApp(cfg *config.Config, opts Options) (*ShareApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Notifier == nil || opts.Confirmer == nil {
		return nil, fmt.Errorf("notifier and confirmer are required")
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = share.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = share.OpIDGenerator{Clock: opts.Clock}
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opID := opts.IDs.New()
	slogger, logFile, err := newLogger(cfg.LogDir, opID, level, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	db, err := database.NewDatabaseFromConfig(cfg.Database, "sharectl")
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	client, err := gateway.New(gateway.Options{
		BaseURL:   cfg.ServerURL,
		Timeout:   cfg.RequestTimeout,
		RequestID: opID,
		Logger:    logger,
		Transport: opts.Transport,
	})
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating gateway: %w", err)
	}

	pages := page.NewSession(client, cfg.CSRF.TokenMeta, cfg.CSRF.HeaderMeta)
	client.UseMetadata(pages)

	messages := share.MessagesFor(cfg.Locale)

	a := &ShareApp{
		cfg:       cfg,
		db:        db,
		sealer:    sealer,
		client:    client,
		pages:     pages,
		messages:  messages,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		logger:    logger,
		clock:     opts.Clock,
		opID:      opID,
		logFile:   logFile,
		shares:    share.NewShareController(client, opts.Notifier, messages, logger),
		revokes:   share.NewRevokeController(client, opts.Notifier, messages, logger),
		deletes:   share.NewDeleteVersionController(client, opts.Notifier, opts.Confirmer, messages, logger),
	}

	if err := a.restoreSession(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug("sharectl started", "server", cfg.ServerURL, "locale", cfg.Locale)
	return a, nil
}

// restoreSession installs the stored session cookie, if any.
func (a *ShareApp) restoreSession() error {
	sealed, err := a.db.GetSession(a.cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if sealed == nil {
		return nil
	}
	if !a.sealer.IsConfigured() {
		a.logger.Warn("stored session ignored: sealer not configured")
		return nil
	}
	value, err := encryption.OpenBytes(a.sealer, sealed)
	if err != nil {
		a.logger.Warn("stored session could not be opened", "error", err)
		return nil
	}
	a.client.SetSessionCookie(a.cfg.SessionCookie, string(value))
	return nil
}

// Messages returns the display strings of the configured locale.
func (a *ShareApp) Messages() *share.Messages {
	return a.messages
}

// OpID returns the operation ID of this invocation.
func (a *ShareApp) OpID() string {
	return a.opID
}

// report notifies the user of a failure that happened before any controller ran.
func (a *ShareApp) report(err error) {
	if errors.Is(err, share.ErrSessionExpired) {
		a.notifier.Notify(a.messages.SessionExpired)
		return
	}
	a.notifier.Notify(a.messages.ErrorPrefix + share.UserMessage(err, ""))
}

// Files loads the owner's files page.
func (a *ShareApp) Files(ctx context.Context) (*page.FilesPage, error) {
	p, err := a.load(ctx, a.cfg.Pages.Files)
	if err != nil {
		a.report(err)
	}
	return p, err
}

// Directories loads the page carrying the shared-directories table.
func (a *ShareApp) Directories(ctx context.Context) (*page.FilesPage, error) {
	p, err := a.load(ctx, a.cfg.Pages.Directories)
	if err != nil {
		a.report(err)
	}
	return p, err
}

func (a *ShareApp) load(ctx context.Context, path string) (*page.FilesPage, error) {
	doc, err := a.pages.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return doc.Files(), nil
}

// SharedFiles loads the shared-with-me page and applies both filters.
func (a *ShareApp) SharedFiles(ctx context.Context, emailQuery, fileQuery string) (*share.SharedFilesView, error) {
	doc, err := a.pages.Load(ctx, a.cfg.Pages.SharedFiles)
	if err != nil {
		a.report(err)
		return nil, err
	}
	view := doc.SharedFiles()
	share.FilterSharedFiles(view, emailQuery, fileQuery)
	return view, nil
}

func (a *ShareApp) loadCard(ctx context.Context, fileID string) (*share.FileCard, error) {
	p, err := a.load(ctx, a.cfg.Pages.Files)
	if err != nil {
		return nil, err
	}
	return p.Card(fileID)
}

// Share loads the files page and shares version of fileID with recipient.
func (a *ShareApp) Share(ctx context.Context, fileID, recipient, version string) (*share.FileCard, error) {
	op := a.begin(share.KindShare, fileID, version, recipient)
	card, err := a.loadCard(ctx, fileID)
	if err != nil {
		a.report(err)
		a.finish(op, nil, err)
		return nil, err
	}
	resp, err := a.shareCard(ctx, card, recipient, version)
	a.finish(op, resp, err)
	return card, err
}

// ShareCard shares version of an already loaded card with recipient.
func (a *ShareApp) ShareCard(ctx context.Context, card *share.FileCard, recipient, version string) error {
	op := a.begin(share.KindShare, card.FileID, version, recipient)
	resp, err := a.shareCard(ctx, card, recipient, version)
	a.finish(op, resp, err)
	return err
}

func (a *ShareApp) shareCard(ctx context.Context, card *share.FileCard, recipient, version string) (*share.Response, error) {
	if card.Share == nil {
		err := fmt.Errorf("share form of %s: %w", card.FileID, share.ErrNotFound)
		a.report(err)
		return nil, err
	}
	card.Share.Recipient = recipient
	if err := card.Share.Version.Select(version); err != nil {
		err = fmt.Errorf("version %s of %s: %w", version, card.FileID, err)
		a.report(err)
		return nil, err
	}
	return a.shares.SubmitShare(ctx, card)
}

// RevokeFile loads the files page and revokes recipient's grant of version of fileID.
func (a *ShareApp) RevokeFile(ctx context.Context, fileID, recipient, version string) (*share.FileCard, error) {
	op := a.begin(share.KindRevoke, fileID, version, recipient)
	card, err := a.loadCard(ctx, fileID)
	if err != nil {
		a.report(err)
		a.finish(op, nil, err)
		return nil, err
	}
	resp, err := a.revokeCard(ctx, card, recipient, version)
	a.finish(op, resp, err)
	return card, err
}

// RevokeCard revokes a grant through the revoke panel of an already loaded card.
func (a *ShareApp) RevokeCard(ctx context.Context, card *share.FileCard, recipient, version string) error {
	op := a.begin(share.KindRevoke, card.FileID, version, recipient)
	resp, err := a.revokeCard(ctx, card, recipient, version)
	a.finish(op, resp, err)
	return err
}

func (a *ShareApp) revokeCard(ctx context.Context, card *share.FileCard, recipient, version string) (*share.Response, error) {
	b, err := share.BindFileRevoke(card)
	if err != nil {
		a.report(err)
		return nil, err
	}
	form := card.Revoke.Form
	if err := form.Version.Select(version); err != nil {
		err = fmt.Errorf("version %s of %s: %w", version, card.FileID, err)
		a.report(err)
		return nil, err
	}
	if err := form.Recipient.Select(recipient); err != nil {
		err = fmt.Errorf("recipient of %s: %w", card.FileID, err)
		a.report(err)
		return nil, err
	}
	return a.revokes.SubmitRevoke(ctx, b)
}

// RevokeDirectory loads the directories page and revokes recipient's access
// to directoryID. It returns the table after the row was removed.
func (a *ShareApp) RevokeDirectory(ctx context.Context, directoryID, recipient string) (*share.DirectoryShareTable, error) {
	op := a.begin(share.KindRevokeDirectory, directoryID, "", recipient)
	p, err := a.load(ctx, a.cfg.Pages.Directories)
	if err != nil {
		a.report(err)
		a.finish(op, nil, err)
		return nil, err
	}
	b, err := share.BindDirectoryRevoke(p.Directories, p.Directories.Find(directoryID, recipient))
	if err != nil {
		err = fmt.Errorf("directory %s shared with %s: %w", directoryID, recipient, err)
		a.report(err)
		a.finish(op, nil, err)
		return nil, err
	}
	resp, err := a.revokes.SubmitRevoke(ctx, b)
	a.finish(op, resp, err)
	return p.Directories, err
}

// DeleteVersion loads the files page and deletes version of fileID after
// the user confirms.
func (a *ShareApp) DeleteVersion(ctx context.Context, fileID, version string) (*share.FileCard, error) {
	op := a.begin(share.KindDeleteVersion, fileID, version, "")
	card, err := a.loadCard(ctx, fileID)
	if err == nil && card.Delete == nil {
		err = fmt.Errorf("delete form of %s: %w", fileID, share.ErrNotFound)
	}
	if err == nil {
		if serr := card.Delete.Version.Select(version); serr != nil {
			err = fmt.Errorf("version %s of %s: %w", version, fileID, serr)
		}
	}
	if err != nil {
		a.report(err)
		a.finish(op, nil, err)
		return nil, err
	}
	resp, err := a.deletes.SubmitDelete(ctx, card)
	a.finish(op, resp, err)
	return card, err
}

// History returns the most recent journaled operations, newest first.
func (a *ShareApp) History(limit int) ([]*share.Operation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return a.db.ListOperations(limit)
}

// SetSession seals and stores the session cookie value for the configured server.
func (a *ShareApp) SetSession(value string) error {
	if value == "" {
		return fmt.Errorf("session value is empty")
	}
	if !a.sealer.IsConfigured() {
		return fmt.Errorf("session key not found: run 'sharectl config init' first")
	}
	sealed, err := encryption.SealBytes(a.sealer, []byte(value))
	if err != nil {
		return fmt.Errorf("sealing session: %w", err)
	}
	if err := a.db.PutSession(a.cfg.ServerURL, sealed, a.clock.Now()); err != nil {
		return err
	}
	a.client.SetSessionCookie(a.cfg.SessionCookie, value)
	a.logger.Info("session stored", "server", a.cfg.ServerURL)
	return nil
}

// ClearSession forgets the stored session of the configured server.
func (a *ShareApp) ClearSession() error {
	if err := a.db.DeleteSession(a.cfg.ServerURL); err != nil {
		return err
	}
	a.logger.Info("session cleared", "server", a.cfg.ServerURL)
	return nil
}

// Close releases resources held by the ShareApp.
func (a *ShareApp) Close() error {
	var firstErr error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
