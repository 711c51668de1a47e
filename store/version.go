package store

import (
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
)

// Version returns the library version recorded in attributes/VERSION.
// A library that was never versioned is 0.0.0.
func (s *Store) Version() (*semver.Version, error) {
	data, err := os.ReadFile(s.VersionPath())
	if os.IsNotExist(err) {
		return semver.New(0, 0, 0, "", ""), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.VersionPath())
	}

	v, err := semver.NewVersion(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "parse %s", s.Rel(s.VersionPath())),
			"the VERSION file must hold a semantic version such as 1.4.0",
		)
	}
	return v, nil
}

// bumpVersion raises the minor version; every accepted batch adds attributes
// without changing existing ones.
func (s *Store) bumpVersion() (*semver.Version, error) {
	current, err := s.Version()
	if err != nil {
		return nil, err
	}
	next := current.IncMinor()
	if err := fsutil.WriteAtomic(s.VersionPath(), []byte(next.String()+"\n"), 0o644); err != nil {
		return nil, err
	}
	return &next, nil
}
