package dialog

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxFailureText = 80

// NotifyDownloadStarted marks name as downloading.
func (n *Notifier) NotifyDownloadStarted(name string) {
	n.UpdateItem(name, StatusWaiting, "Downloading...")
	n.UpdateProgressText("Downloading " + name + "...")
}

// NotifyInstallStarted marks name as installing.
func (n *Notifier) NotifyInstallStarted(name string) {
	n.UpdateItem(name, StatusWaiting, "Installing...")
	n.UpdateProgressText("Installing " + name + "...")
}

// NotifyPackageSuccess marks name as installed.
func (n *Notifier) NotifyPackageSuccess(name string) {
	n.UpdateItem(name, StatusSuccess, "Installed")
}

// NotifyPackageFailure marks name as failed, appending a shortened error.
func (n *Notifier) NotifyPackageFailure(name string, err error) {
	text := "Failed"
	if err != nil {
		if detail := strings.TrimSpace(err.Error()); detail != "" {
			text += ": " + truncate(oneLine(detail), maxFailureText)
		}
	}
	n.UpdateItem(name, StatusFail, text)
}

// NotifyPackageSkipped marks name as skipped. Skipped items count as complete.
func (n *Notifier) NotifyPackageSkipped(name, reason string) {
	text := "Skipped"
	if reason = strings.TrimSpace(reason); reason != "" {
		text += ": " + reason
	}
	n.UpdateItem(name, StatusSuccess, text)
}

// NotifyPhaseStarted shows a new phase of the setup in the message area.
func (n *Notifier) NotifyPhaseStarted(phase string) {
	label := phaseLabel(phase)
	n.UpdateMessage(label)
	n.UpdateProgressText(label + "...")
}

// phaseLabel title-cases a phase name, leaving acronyms such as "MSI" intact.
func phaseLabel(phase string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(phase))
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit-3]) + "..."
}
