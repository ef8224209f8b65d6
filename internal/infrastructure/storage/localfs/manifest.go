package localfs

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Manifest lists a corpus from a newline-delimited file of identifiers.
// Blank lines and lines starting with # are ignored, as are entries without
// the corpus suffix.
type Manifest struct {
	path   string
	suffix string
}

func NewManifest(path, suffix string) *Manifest {
	return &Manifest{path: path, suffix: normalizeSuffix(suffix)}
}

func (m *Manifest) List(_ context.Context) ([]string, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !matchesSuffix(line, m.suffix) {
			slog.Debug("manifest_entry_skipped", "entry", line, "suffix", m.suffix)
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ids, nil
}
