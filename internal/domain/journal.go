package domain

// TradeNote holds free-text notes attached to a trade.
type TradeNote struct {
	TradeID   int64
	Notes     string
	UpdatedAt int64 // ms epoch
}

// Screenshot is an uploaded chart image attached to a trade.
type Screenshot struct {
	ID           int64
	TradeID      int64
	Filename     string // server-generated unique name
	OriginalName string // client-supplied name
	UploadedAt   int64  // ms epoch
}

// DayNote is a calendar note keyed by date, e.g. "2026-08-29".
type DayNote struct {
	DateKey   string
	Notes     string
	UpdatedAt int64
}

// WeekNote is a weekly review keyed by ISO week, e.g. "2026-W35".
type WeekNote struct {
	WeekKey   string
	Review    string
	Well      string
	Improve   string
	UpdatedAt int64
}
