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

var statusTags = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusReport collects labelled rows grouped under section headers. Labels
// are padded to the widest label in the report when rendered.
type statusReport struct {
	colorize bool
	entries  []reportEntry
}

type reportEntry struct {
	header string
	label  string
	kind   statusKind
	detail string
	raw    *string
}

func newStatusReport(colorize bool) *statusReport {
	return &statusReport{colorize: colorize}
}

func (r *statusReport) section(title string) {
	if len(r.entries) > 0 {
		r.text("")
	}
	r.entries = append(r.entries, reportEntry{header: strings.TrimSpace(title)})
}

func (r *statusReport) row(label string, kind statusKind, detail string) {
	r.entries = append(r.entries, reportEntry{label: label, kind: kind, detail: detail})
}

// check adds an OK or ERROR row depending on ok.
func (r *statusReport) check(label string, ok bool, detail string) {
	kind := statusError
	if ok {
		kind = statusOK
	}
	r.row(label, kind, detail)
}

// text adds a preformatted block such as a table.
func (r *statusReport) text(s string) {
	r.entries = append(r.entries, reportEntry{raw: &s})
}

func (r *statusReport) lines() []string {
	width := 0
	for _, e := range r.entries {
		if e.label != "" && len(e.label)+1 > width {
			width = len(e.label) + 1
		}
	}
	out := make([]string, 0, len(r.entries)+4)
	for _, e := range r.entries {
		switch {
		case e.raw != nil:
			out = append(out, *e.raw)
		case e.header != "":
			title := "== " + e.header + " =="
			out = append(out, r.paint(statusInfo, title), strings.Repeat("-", len(title)))
		default:
			line := fmt.Sprintf("  %-*s %s", width, e.label+":", r.paint(e.kind, "["+statusTags[e.kind].label+"]"))
			if e.detail != "" {
				line += " " + e.detail
			}
			out = append(out, line)
		}
	}
	return out
}

func (r *statusReport) write(w io.Writer) {
	for _, line := range r.lines() {
		fmt.Fprintln(w, line)
	}
}

func (r *statusReport) paint(kind statusKind, s string) string {
	if !r.colorize {
		return s
	}
	return statusTags[kind].color + s + ansiReset
}

func isTerminal(value any) bool {
	file, ok := value.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
