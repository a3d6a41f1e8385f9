package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"musicmerge/internal/merge"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

const fieldLabelWidth = 16

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func writeSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("  %-*s %s", fieldLabelWidth, label+":", value)
}

func paint(color, s string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func outcomeLabel(outcome merge.Outcome, colorize bool) string {
	label := strings.ReplaceAll(string(outcome), "_", " ")
	switch outcome {
	case merge.OutcomeContributed:
		return paint(ansiGreen, label, colorize)
	case merge.OutcomeMissing:
		return paint(ansiYellow, label, colorize)
	case merge.OutcomeNoMusic, merge.OutcomeSkippedOutput:
		return paint(ansiGray, label, colorize)
	default:
		return label
	}
}

func statusLabel(status string, colorize bool) string {
	switch status {
	case "succeeded":
		return paint(ansiGreen, status, colorize)
	case "failed":
		return paint(ansiRed, status, colorize)
	default:
		return status
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
