package enums

// NoticeLevel classifies an ephemeral notification.
type NoticeLevel string

const (
	NoticeLevelSuccess NoticeLevel = "success"
	NoticeLevelError   NoticeLevel = "error"
	NoticeLevelInfo    NoticeLevel = "info"
)
