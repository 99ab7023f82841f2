package telegram

// Client sends plain-text chat messages. Implementations hide the bot library.
type Client interface {
	SendText(chatID int64, text string) error
}
