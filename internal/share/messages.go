package share

import "golang.org/x/text/language"

// Messages is the display string table for one locale.
type Messages struct {
	ShareSucceeded  string
	ShareFailed     string
	RevokeSucceeded string
	RevokeFailed    string
	DeleteSucceeded string
	DeleteFailed    string

	// ErrorPrefix is prepended to every transport or server error.
	ErrorPrefix string

	SessionExpired string

	FileRequired          string
	RecipientRequired     string
	SelectVersionToShare  string
	SelectVersionToDelete string
	ConfirmDeleteVersion  string

	EnableDeleteMode  string
	DisableDeleteMode string
	NoFilesFound      string
}

var english = &Messages{
	ShareSucceeded:  "File shared successfully.",
	ShareFailed:     "File sharing failed!",
	RevokeSucceeded: "Share successfully revoked!",
	RevokeFailed:    "Failed to revoke the share!",
	DeleteSucceeded: "File successfully deleted!",
	DeleteFailed:    "File deletion failed!",

	ErrorPrefix:    "An error occurred: ",
	SessionExpired: "Your session has expired. Run 'sharectl session set' to sign in again.",

	FileRequired:          "No file selected to share.",
	RecipientRequired:     "Please enter the recipient's email.",
	SelectVersionToShare:  "Please select a version to share.",
	SelectVersionToDelete: "Please select a version to delete.",
	ConfirmDeleteVersion:  "Are you sure you want to delete this file version?",

	EnableDeleteMode:  "Enable Delete Mode",
	DisableDeleteMode: "Disable Delete Mode",
	NoFilesFound:      "No shared files found.",
}

var turkish = &Messages{
	ShareSucceeded:  "Dosya başarıyla paylaşıldı.",
	ShareFailed:     "Dosya paylaşım işlemi başarısız oldu!",
	RevokeSucceeded: "Paylaşım başarıyla iptal edildi!",
	RevokeFailed:    "Paylaşım iptal edilemedi!",
	DeleteSucceeded: "Dosya başarıyla silindi.",
	DeleteFailed:    "Dosya silme işlemi başarısız oldu!",

	ErrorPrefix:    "Bir hata oluştu: ",
	SessionExpired: "Oturumunuzun süresi doldu. Yeniden oturum açmak için 'sharectl session set' komutunu çalıştırın.",

	FileRequired:          "Paylaşılacak dosya seçilmedi.",
	RecipientRequired:     "Lütfen alıcının e-posta adresini girin.",
	SelectVersionToShare:  "Lütfen paylaşmak için bir sürüm seçin.",
	SelectVersionToDelete: "Lütfen silmek için bir sürüm seçin.",
	ConfirmDeleteVersion:  "Bu dosya sürümünü silmek istediğinizden emin misiniz?",

	EnableDeleteMode:  "Silme Modunu Aç",
	DisableDeleteMode: "Silme Modunu Kapat",
	NoFilesFound:      "Paylaşılan dosya bulunamadı.",
}

var (
	supported = []language.Tag{language.English, language.Turkish}
	catalog   = []*Messages{english, turkish}
	matcher   = language.NewMatcher(supported)
)

// MessagesFor returns the table that best matches locale (a BCP 47 tag such
// as "tr" or "en-GB"). Unknown or malformed locales fall back to English.
func MessagesFor(locale string) *Messages {
	tag, err := language.Parse(locale)
	if err != nil {
		return english
	}
	_, i, confidence := matcher.Match(tag)
	if confidence == language.No {
		return english
	}
	return catalog[i]
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
