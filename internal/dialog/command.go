package dialog

import (
	"strconv"
	"strings"
)

// Command is a single line written to the dialog command file.
type Command string

// ListAction selects whether a list item command creates or modifies a row.
type ListAction string

const (
	ListAdd    ListAction = "add"
	ListUpdate ListAction = "update"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// oneLine keeps a value from splitting its command across lines.
func oneLine(value string) string {
	return lineBreaks.Replace(value)
}

func keyValue(key, value string) Command {
	return Command(key + ": " + oneLine(value))
}

// ProgressCommand sets the progress bar, clamped to [0,100].
func ProgressCommand(percent int) Command {
	return keyValue("progress", strconv.Itoa(clampPercent(percent)))
}

func ProgressTextCommand(text string) Command { return keyValue("progresstext", text) }

func TitleCommand(text string) Command { return keyValue("title", text) }

func MessageCommand(text string) Command { return keyValue("message", text) }

func ButtonTextCommand(text string) Command { return keyValue("button1text", text) }

// RawCommand wraps an arbitrary line, flattened to a single line.
func RawCommand(line string) Command { return Command(oneLine(line)) }

// QuitCommand asks the dialog to exit.
func QuitCommand() Command { return Command("quit:") }

// ListItemCommand builds a list item line. The statustext segment is omitted
// when text is empty.
func ListItemCommand(action ListAction, name string, status ItemStatus, text string) Command {
	var b strings.Builder
	b.WriteString("listitem: ")
	b.WriteString(string(action))
	b.WriteString(", title: ")
	b.WriteString(oneLine(name))
	b.WriteString(", status: ")
	b.WriteString(status.String())
	if text != "" {
		b.WriteString(", statustext: ")
		b.WriteString(oneLine(text))
	}
	return Command(b.String())
}

func clampPercent(percent int) int {
	return min(max(percent, 0), 100)
}

// percentComplete uses integer division and reports 0 when there is no work.
func percentComplete(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return clampPercent(completed * 100 / total)
}
