package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OCAP2/panorama/internal/storage"
)

func (b *Backend) writeScene(rec *SceneRecord) error {
	if b.cfg.CompressOutput {
		return b.writeGzipJSON(b.scenePath(rec.SceneID, true), rec)
	}
	return b.writeJSON(b.scenePath(rec.SceneID, false), rec)
}

func (b *Backend) writeJSON(path string, data *SceneRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data *SceneRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	return json.NewEncoder(gw).Encode(data)
}

// readScene tries the configured format first, then the other one.
func (b *Backend) readScene(sceneID string) (*SceneRecord, error) {
	order := []bool{b.cfg.CompressOutput, !b.cfg.CompressOutput}
	for _, compressed := range order {
		rec, err := readSceneFile(b.scenePath(sceneID, compressed), compressed)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("scene %q: %w", sceneID, storage.ErrSceneNotFound)
}

func readSceneFile(path string, compressed bool) (*SceneRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gr.Close()
		r = gr
	}

	var rec SceneRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode scene file: %w", err)
	}
	return &rec, nil
}
