package share_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"

	"sharectl/internal/share"
	"sharectl/internal/testutil"
)

func TestDeleteVersionController_SubmitDelete(t *testing.T) {
	en := share.MessagesFor("en")

	t.Run("no version selected", func(t *testing.T) {
		t.Parallel()
		gw := testutil.NewFakeGateway()
		notes := &testutil.RecordingNotifier{}
		confirm := &testutil.StubConfirmer{Answer: true}
		c := share.NewDeleteVersionController(gw, notes, confirm, en, share.NewNopLogger())

		card := newCard()
		_, err := c.SubmitDelete(context.Background(), card)
		if !errors.Is(err, share.ErrValidation) {
			t.Fatalf("SubmitDelete() error = %v, want ErrValidation", err)
		}
		if notes.Last() != "Please select a version to delete." {
			t.Errorf("notification = %q", notes.Last())
		}
		if len(confirm.Prompts()) != 0 {
			t.Error("confirmation asked without a selected version")
		}
		if gw.Calls() != 0 {
			t.Errorf("calls = %d, want 0", gw.Calls())
		}
	})

	t.Run("declined confirmation sends nothing", func(t *testing.T) {
		t.Parallel()
		gw := testutil.NewFakeGateway()
		notes := &testutil.RecordingNotifier{}
		confirm := &testutil.StubConfirmer{Answer: false}
		c := share.NewDeleteVersionController(gw, notes, confirm, en, share.NewNopLogger())

		card := newCard()
		card.Delete.Version.Value = "1"

		_, err := c.SubmitDelete(context.Background(), card)
		if !errors.Is(err, share.ErrDeclined) {
			t.Fatalf("SubmitDelete() error = %v, want ErrDeclined", err)
		}
		if got := confirm.Prompts(); !slices.Equal(got, []string{en.ConfirmDeleteVersion}) {
			t.Errorf("prompts = %v", got)
		}
		if gw.Calls() != 0 || len(notes.Messages()) != 0 {
			t.Errorf("calls=%d notifications=%v, want none", gw.Calls(), notes.Messages())
		}
		if card.Removed() {
			t.Error("card removed after declined confirmation")
		}
	})

	t.Run("confirmed delete removes the card", func(t *testing.T) {
		t.Parallel()
		gw := testutil.NewFakeGateway(testutil.OK(""))
		notes := &testutil.RecordingNotifier{}
		c := share.NewDeleteVersionController(gw, notes, &testutil.StubConfirmer{Answer: true}, en, share.NewNopLogger())

		card := newCard()
		card.Delete.Version.Value = "2"

		if _, err := c.SubmitDelete(context.Background(), card); err != nil {
			t.Fatalf("SubmitDelete() error = %v", err)
		}
		req := gw.Requests()[0]
		if req.Method != http.MethodDelete || req.Action != "/files/F1/versions" {
			t.Errorf("request = %s %s, want DELETE /files/F1/versions", req.Method, req.Action)
		}
		if got := fieldNames(req.Fields); !slices.Equal(got, []string{"versionNumber", "username"}) {
			t.Errorf("fields = %v", got)
		}
		if req.Value("versionNumber") != "2" || req.Value("username") != "alice" {
			t.Errorf("field values = %+v", req.Fields)
		}
		if !card.Removed() {
			t.Error("card not removed after delete")
		}
		if notes.Last() != "File successfully deleted!" {
			t.Errorf("notification = %q", notes.Last())
		}
	})

	t.Run("server failure keeps the card", func(t *testing.T) {
		t.Parallel()
		gw := testutil.NewFakeGateway(testutil.Fail(http.StatusInternalServerError, "Version is locked"))
		notes := &testutil.RecordingNotifier{}
		c := share.NewDeleteVersionController(gw, notes, &testutil.StubConfirmer{Answer: true}, en, share.NewNopLogger())

		card := newCard()
		card.Delete.Version.Value = "2"

		if _, err := c.SubmitDelete(context.Background(), card); err == nil {
			t.Fatal("SubmitDelete() expected error")
		}
		if card.Removed() {
			t.Error("card removed after failed delete")
		}
		if notes.Last() != "An error occurred: Version is locked" {
			t.Errorf("notification = %q", notes.Last())
		}
	})

	t.Run("missing delete form", func(t *testing.T) {
		t.Parallel()
		c := share.NewDeleteVersionController(testutil.NewFakeGateway(), &testutil.RecordingNotifier{},
			&testutil.StubConfirmer{Answer: true}, en, share.NewNopLogger())

		_, err := c.SubmitDelete(context.Background(), &share.FileCard{FileID: "F1"})
		if !errors.Is(err, share.ErrNotFound) {
			t.Errorf("SubmitDelete() error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteVersionController_InFlight(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.Block = make(chan struct{})
	gw.Entered = make(chan struct{}, 1)
	c := share.NewDeleteVersionController(gw, &testutil.RecordingNotifier{},
		&testutil.StubConfirmer{Answer: true}, share.MessagesFor("en"), share.NewNopLogger())

	card := newCard()
	card.Delete.Version.Value = "1"

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitDelete(context.Background(), card)
		done <- err
	}()
	<-gw.Entered

	if !c.InFlight(card) {
		t.Error("InFlight() = false while request outstanding")
	}
	if _, err := c.SubmitDelete(context.Background(), card); !errors.Is(err, share.ErrInFlight) {
		t.Errorf("second SubmitDelete() error = %v, want ErrInFlight", err)
	}

	close(gw.Block)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitDelete() error = %v", err)
	}
}
