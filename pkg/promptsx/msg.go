package promptsx

import (
	"github.com/orochaa/go-clack/prompts"
	"github.com/orochaa/go-clack/prompts/symbols"
	"github.com/orochaa/go-clack/third_party/picocolors"
)

// Note displays a formatted note box with a title, message, and borders.
func Note(title, msg string) {
	prompts.Note(msg, prompts.NoteOptions{Title: title})
}

// InfoWithLastLine displays an informational message with a blue info symbol
// and a last line.
func InfoWithLastLine(msg string) {
	prompts.Message(msg, prompts.MessageOptions{
		FirstLine: prompts.MessageLineOptions{
			Start: picocolors.Blue(symbols.INFO),
		},
		NewLine: prompts.MessageLineOptions{
			Start: picocolors.Gray(symbols.BAR),
		},
		LastLine: prompts.MessageLineOptions{
			Start: picocolors.Gray(symbols.BAR),
		},
	})
}

// Failure displays title and placeholder in gray followed by the reason in
// red, marked with the error symbol.
func Failure(title, placeholder, reason string) {
	msg := picocolors.Bold(title) + "\n" +
		picocolors.Gray(placeholder) + "\n" +
		picocolors.Red(reason)

	prompts.Message(msg, prompts.MessageOptions{
		FirstLine: prompts.MessageLineOptions{
			Start: picocolors.Red(symbols.ERROR),
		},
		NewLine: prompts.MessageLineOptions{
			Start: picocolors.Gray(symbols.BAR),
		},
		LastLine: prompts.MessageLineOptions{
			Start: picocolors.Gray(symbols.BAR),
		},
	})
}
