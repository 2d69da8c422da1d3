package share_test

import (
	"testing"

	"sharectl/internal/share"
)

func newSharedView() *share.SharedFilesView {
	return &share.SharedFilesView{
		Groups: []*share.EmailGroup{
			{
				Email: "Bob@Example.com",
				Directories: []*share.DirectoryGroup{
					{Title: "Reports", Files: []*share.SharedFile{{Name: "Q1.pdf"}, {Name: "Q2.pdf"}}},
					{Title: "Photos", Files: []*share.SharedFile{{Name: "beach.jpg"}}},
				},
			},
			{
				Email: "carol@example.org",
				Directories: []*share.DirectoryGroup{
					{Title: "Notes", Files: []*share.SharedFile{{Name: "todo.txt"}}},
				},
			},
		},
	}
}

func TestFilterSharedFiles(t *testing.T) {
	t.Run("empty queries show everything", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "", "  ")

		for _, g := range view.Groups {
			if !g.Visible {
				t.Errorf("group %s hidden", g.Email)
			}
			for _, d := range g.Directories {
				if !d.Visible {
					t.Errorf("directory %s hidden", d.Title)
				}
				for _, f := range d.Files {
					if !f.Visible {
						t.Errorf("file %s hidden", f.Name)
					}
				}
			}
		}
		if view.NoFilesVisible {
			t.Error("NoFilesVisible = true")
		}
	})

	t.Run("email query is trimmed and case-insensitive", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "  BOB@ ", "")

		bob, carol := view.Groups[0], view.Groups[1]
		if !bob.Visible || carol.Visible {
			t.Errorf("visible = bob:%v carol:%v, want bob only", bob.Visible, carol.Visible)
		}
		if !bob.Directories[0].Files[0].Visible {
			t.Error("bob's files hidden")
		}
		if carol.Directories[0].Files[0].Visible {
			t.Error("carol's file visible")
		}
	})

	t.Run("file query alone hides files but keeps every group", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "", "q2")

		reports := view.Groups[0].Directories[0]
		photos := view.Groups[0].Directories[1]
		notes := view.Groups[1].Directories[0]
		if reports.Files[0].Visible || !reports.Files[1].Visible {
			t.Errorf("Q1=%v Q2=%v, want only Q2", reports.Files[0].Visible, reports.Files[1].Visible)
		}
		if photos.Files[0].Visible {
			t.Error("beach.jpg visible")
		}
		if notes.Files[0].Visible {
			t.Error("todo.txt visible")
		}

		// An empty email query matches every directory title.
		if !photos.Visible || !notes.Visible {
			t.Errorf("Photos=%v Notes=%v, want both directories visible", photos.Visible, notes.Visible)
		}
		if !view.Groups[0].Visible || !view.Groups[1].Visible {
			t.Errorf("bob=%v carol=%v, want both groups visible", view.Groups[0].Visible, view.Groups[1].Visible)
		}
		if view.NoFilesVisible {
			t.Error("NoFilesVisible = true")
		}
	})

	t.Run("both queries must match a file", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "carol", "q1")

		if view.Groups[0].Directories[0].Files[0].Visible {
			t.Error("bob's Q1 visible under carol's filter")
		}
		if view.Groups[1].Directories[0].Files[0].Visible {
			t.Error("todo.txt visible although name does not match")
		}
		if !view.Groups[1].Visible {
			t.Error("carol hidden although the sender matches")
		}
	})

	t.Run("directory title matches the email query", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "photos", "")

		photos := view.Groups[0].Directories[1]
		if !photos.Visible {
			t.Error("Photos directory hidden")
		}
		if photos.Files[0].Visible {
			t.Error("file visible although sender does not match")
		}
		if !view.Groups[0].Visible {
			t.Error("bob hidden although a directory matches")
		}
	})

	t.Run("no match shows the empty message", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "dave", "zzz")

		if !view.NoFilesVisible {
			t.Error("NoFilesVisible = false")
		}
		for _, g := range view.Groups {
			if g.Visible {
				t.Errorf("group %s visible", g.Email)
			}
		}
	})

	t.Run("clearing queries restores the view", func(t *testing.T) {
		view := newSharedView()
		share.FilterSharedFiles(view, "dave", "")
		share.FilterSharedFiles(view, "", "")

		if view.NoFilesVisible || !view.Groups[1].Visible {
			t.Error("view not restored after clearing the queries")
		}
	})
}
