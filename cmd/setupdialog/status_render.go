package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusLabels = map[statusKind]string{
	statusInfo:  "INFO",
	statusOK:    "OK",
	statusWarn:  "WARN",
	statusError: "ERROR",
}

var statusColors = map[statusKind]string{
	statusInfo:  "\x1b[34m",
	statusOK:    "\x1b[32m",
	statusWarn:  "\x1b[33m",
	statusError: "\x1b[31m",
}

const ansiReset = "\x1b[0m"

// statusLine is one "label: [KIND] detail" row of the status report.
type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

// statusReport collects sections and renders them with labels padded to the
// widest label in the report.
type statusReport struct {
	colorize bool
	sections []*statusSection
}

type statusSection struct {
	title string
	lines []statusLine
	// raw is printed verbatim after the lines (tables).
	raw string
}

func (r *statusReport) section(title string) *statusSection {
	sec := &statusSection{title: title}
	r.sections = append(r.sections, sec)
	return sec
}

func (s *statusSection) add(label string, kind statusKind, detail string) {
	s.lines = append(s.lines, statusLine{label: label, kind: kind, detail: detail})
}

func (r *statusReport) render() string {
	width := 0
	for _, sec := range r.sections {
		for _, line := range sec.lines {
			width = max(width, len(line.label)+1)
		}
	}

	var out []string
	for i, sec := range r.sections {
		if i > 0 {
			out = append(out, "")
		}
		header := fmt.Sprintf("== %s ==", sec.title)
		out = append(out, r.paint(statusInfo, header), r.paint(statusInfo, strings.Repeat("-", len(header))))
		for _, line := range sec.lines {
			text := fmt.Sprintf("  %-*s [%s]", width, line.label+":", statusLabels[line.kind])
			if line.detail != "" {
				text += " " + line.detail
			}
			out = append(out, r.paint(line.kind, text))
		}
		if sec.raw != "" {
			out = append(out, sec.raw)
		}
	}
	return strings.Join(out, "\n")
}

func (r *statusReport) paint(kind statusKind, text string) string {
	if !r.colorize {
		return text
	}
	return statusColors[kind] + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
