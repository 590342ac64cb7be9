package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/log"
)

// BuildReport describes what Build did with each input file.
type BuildReport struct {
	Merged     []string
	Skipped    map[string]string
	Duplicates map[string]BookID
}

type entry struct {
	id  BookID
	raw json.RawMessage
}

// Build merges every *.json book file in dir into a single catalog document.
// Files missing id, title or chapters are skipped. When an id repeats, the
// file read first (by name) is kept. Books are ordered by id.
func Build(dir string) ([]byte, *BuildReport, error) {
	fs := filesystem.API()
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	report := &BuildReport{
		Skipped:    make(map[string]string),
		Duplicates: make(map[string]BookID),
	}

	var (
		entries []entry
		seen    = make(map[BookID]bool)
	)

	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		content, err := fs.ReadFile(filepath.Join(dir, name))
		if err != nil {
			report.Skipped[name] = err.Error()
			continue
		}

		id, reason := validate(content)
		if reason != "" {
			log.Warnf("catalog build: skipping %s: %s", name, reason)
			report.Skipped[name] = reason
			continue
		}

		if seen[id] {
			log.Warnf("catalog build: duplicate id %s in %s", id, name)
			report.Duplicates[name] = id
			continue
		}
		seen[id] = true

		entries = append(entries, entry{id: id, raw: content})
		report.Merged = append(report.Merged, name)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].id.Less(entries[j].id)
	})

	var buf bytes.Buffer
	buf.WriteString("[")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		if err := json.Indent(&buf, bytes.TrimSpace(e.raw), "  ", "  "); err != nil {
			return nil, nil, err
		}
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	return buf.Bytes(), report, nil
}

// validate checks the fields the player needs and returns the id, or a reason to skip.
func validate(content []byte) (BookID, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return "", fmt.Sprintf("not a JSON object: %s", err)
	}

	for _, required := range []string{"id", "title", "chapters"} {
		if _, ok := fields[required]; !ok {
			return "", fmt.Sprintf("missing %q", required)
		}
	}

	var id BookID
	if err := json.Unmarshal(fields["id"], &id); err != nil {
		return "", fmt.Sprintf("invalid id: %s", err)
	}

	var chapters []Chapter
	if err := json.Unmarshal(fields["chapters"], &chapters); err != nil {
		return "", fmt.Sprintf("invalid chapters: %s", err)
	}

	return id, ""
}
