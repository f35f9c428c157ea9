package testrunaggregatorlib

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type localSource struct {
	fs  afero.Fs
	dir string
}

// NewLocalSource reads runner files from the top level of dir. Subdirectories
// are not descended into.
func NewLocalSource(fs afero.Fs, dir string) ResultSource {
	return &localSource{fs: fs, dir: dir}
}

func (s *localSource) List(ctx context.Context) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if !IsRunnerFile(info.Name()) {
			logrus.WithField("file", filepath.Join(s.dir, info.Name())).Debug("Ignoring file that is not a runner result file")
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *localSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath := filepath.Join(s.dir, name)
	data, err := afero.ReadFile(s.fs, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}
	return data, nil
}

func (s *localSource) String() string {
	return s.dir
}
