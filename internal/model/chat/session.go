package chat

import "time"

// Session is the conversation handle owned by one widget instance. At most
// one session exists per widget ID; it is created lazily on first open and
// never recreated.
type Session struct {
	ID        string    `json:"id"`
	WidgetID  string    `json:"widgetId"`
	CreatedAt time.Time `json:"createdAt"`
}
