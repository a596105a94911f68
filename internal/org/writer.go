// Package org emits monthly agenda files in org-mode outline form:
//
//	#+title: 2025-08-27
//
//	* Standup
//	<2025-08-27 Wed 09:00-10:00>
package org

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gcal2org/internal/agenda"
	"gcal2org/internal/model"
)

// Filename returns the canonical file name for a month, e.g. "2025-08.org".
func Filename(m agenda.Month) string {
	return m.String() + ".org"
}

// Render produces the file body for one month. generated stamps the header;
// events must already be sorted.
func Render(events []model.Event, generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#+title: %s\n", generated.Format("2006-01-02"))

	if len(events) > 0 {
		b.WriteString("\n")
	}
	for _, ev := range events {
		fmt.Fprintf(&b, "* %s\n", ev.Title)
		fmt.Fprintf(&b, "<%s %s %s-%s>\n",
			ev.Start.Format("2006-01-02"),
			ev.Start.Format("Mon"),
			ev.Start.Format("15:04"),
			ev.End.Format("15:04"),
		)
	}
	return b.String()
}

// WriteMonth replaces dir/<YYYY-MM>.org with freshly rendered content. Only
// that exact filename is touched; a previous file is removed first so a
// failed write never leaves stale events behind a current header.
func WriteMonth(dir string, m agenda.Month, events []model.Event, generated time.Time) error {
	path := filepath.Join(dir, Filename(m))

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(Render(events, generated)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
