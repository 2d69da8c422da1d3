package share

import "strings"

// SharedFile is a file card on the shared-with-me page.
type SharedFile struct {
	Name    string
	Visible bool
}

// DirectoryGroup lists the shared files of one directory.
type DirectoryGroup struct {
	Title   string
	Visible bool
	Files   []*SharedFile
}

// EmailGroup lists everything one sender shared.
type EmailGroup struct {
	Email       string
	Visible     bool
	Directories []*DirectoryGroup
}

// SharedFilesView is the shared-with-me page.
type SharedFilesView struct {
	Groups         []*EmailGroup
	NoFilesVisible bool
}

// FilterSharedFiles applies the sender and file-name search to view.
// Both queries are trimmed and matched case-insensitively as substrings.
//
// A file is visible when the sender matches (or emailQuery is empty) and its
// name matches (or fileQuery is empty). A directory group stays visible when
// its title contains emailQuery, any file is visible, or both queries are
// empty; an email group likewise with its sender. NoFilesVisible is set when
// every email group ends up hidden.
func FilterSharedFiles(view *SharedFilesView, emailQuery, fileQuery string) {
	emailQuery = strings.ToLower(strings.TrimSpace(emailQuery))
	fileQuery = strings.ToLower(strings.TrimSpace(fileQuery))
	noQuery := emailQuery == "" && fileQuery == ""

	anyGroupVisible := false
	for _, group := range view.Groups {
		sender := strings.ToLower(group.Email)
		emailMatch := strings.Contains(sender, emailQuery)
		anyDirectoryMatch := false

		for _, dir := range group.Directories {
			directoryMatch := strings.Contains(strings.ToLower(dir.Title), emailQuery)
			anyFileMatch := false

			for _, file := range dir.Files {
				fileMatch := strings.Contains(strings.ToLower(file.Name), fileQuery)
				file.Visible = (emailQuery == "" || emailMatch) && (fileQuery == "" || fileMatch)
				if file.Visible {
					anyFileMatch = true
				}
			}

			dir.Visible = directoryMatch || anyFileMatch || noQuery
			if dir.Visible {
				anyDirectoryMatch = true
			}
		}

		group.Visible = emailMatch || anyDirectoryMatch || noQuery
		if group.Visible {
			anyGroupVisible = true
		}
	}

	view.NoFilesVisible = !anyGroupVisible
}
