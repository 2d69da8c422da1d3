package share_test

import (
	"sharectl/internal/share"
)

func versions(values ...string) share.Selector {
	var s share.Selector
	for _, v := range values {
		s.Options = append(s.Options, share.Option{Value: v, Label: "v" + v})
	}
	return s
}

// newCard builds the card of file F1 owned by alice with versions 1 and 2
// and a hidden revoke panel.
func newCard() *share.FileCard {
	return &share.FileCard{
		FileID: "F1",
		Name:   "report.pdf",
		Share: &share.ShareForm{
			Action:   "/files/share",
			Username: "alice",
			FileID:   "F1",
			Version:  versions("1", "2"),
		},
		Revoke: &share.RevokePanel{
			Form: &share.RevokeForm{
				ID:        "revoke-form-F1",
				Action:    "/files/revoke",
				FileID:    "F1",
				Username:  "alice",
				Version:   versions("1", "2"),
				Recipient: share.Selector{Options: []share.Option{{Value: "bob@example.com", Label: "bob@example.com"}}},
			},
		},
		Delete: &share.DeleteForm{
			Action:   "/files/F1/versions",
			FileID:   "F1",
			Username: "alice",
			Version:  versions("1", "2"),
		},
	}
}

func fieldNames(fields []share.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
