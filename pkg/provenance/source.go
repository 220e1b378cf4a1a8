package provenance

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"strings"

	"github.com/matzehuels/sysresolve/pkg/errors"
)

// RPMQueryFormat prints one "name (version)|path" line per owned file.
const RPMQueryFormat = "[%{NAME} (%{VERSION})|%{FILENAMES}\\n]"

// RPMSource queries the RPM database with a single rpm -qa call.
type RPMSource struct {
	// Binary is the rpm executable. Defaults to /bin/rpm.
	Binary string
}

var _ Source = (*RPMSource)(nil)

// NewRPMSource returns a source using /bin/rpm.
func NewRPMSource() *RPMSource { return &RPMSource{Binary: "/bin/rpm"} }

func (s *RPMSource) Query(ctx context.Context) (map[string]string, error) {
	cmd := exec.CommandContext(ctx, s.Binary, "-qa", "--qf", RPMQueryFormat)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvenanceUnavailable, err, "run %s", s.Binary)
	}
	return ParseLines(&stdout)
}

// StaticSource serves a fixed map.
type StaticSource map[string]string

func (s StaticSource) Query(context.Context) (map[string]string, error) {
	return maps.Clone(map[string]string(s)), nil
}

// FileSource reads "package|path" lines from a file, the same format the
// RPM query prints. Useful for hosts without a package database.
type FileSource struct {
	Path string
}

func (s FileSource) Query(context.Context) (map[string]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvenanceUnavailable, err, "open %s", s.Path)
	}
	defer f.Close()
	return ParseLines(f)
}

// ParseLines parses "package|path" lines. Blank lines are skipped; a line
// without a separator is an error. Later lines win for duplicate paths.
func ParseLines(r io.Reader) (map[string]string, error) {
	owner := make(map[string]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		pkg, path, ok := strings.Cut(text, "|")
		if !ok {
			return nil, errors.New(errors.ErrCodeProvenanceUnavailable, "line %d: missing '|' separator", line)
		}
		owner[path] = pkg
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read package list: %w", err)
	}
	return owner, nil
}
