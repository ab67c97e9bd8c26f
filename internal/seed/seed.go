// Package seed loads the bundled project and update collections.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/templui/fliptrack/internal/model"
)

//go:embed data/*.json
var bundled embed.FS

type Data struct {
	Projects []model.Project
	Updates  []model.Update
}

// Load reads projects.json and updates.json from dir, or the bundled copies when dir is empty.
func Load(dir string) (*Data, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(bundled, "data")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys)
}

func LoadFS(fsys fs.FS) (*Data, error) {
	data := &Data{}

	err := decode(fsys, "projects.json", &data.Projects)
	if err != nil {
		return nil, err
	}

	err = decode(fsys, "updates.json", &data.Updates)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func decode(fsys fs.FS, name string, v any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	err = json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	return nil
}
