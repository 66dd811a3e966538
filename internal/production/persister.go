// Package production provides production integrations: snapshot persistence,
// transition event publishing, graph visualization and graph hot reload.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/comalice/motionchart/realtime"
)

// Persister stores controller snapshots keyed by controller ID.
type Persister interface {
	Save(ctx context.Context, snapshot realtime.Snapshot) error
	Load(ctx context.Context, id string) (realtime.Snapshot, error)
}

// codec is one snapshot encoding with its file extension.
type codec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

// fileStore writes one file per snapshot under dir.
type fileStore struct {
	dir   string
	codec codec
}

func newFileStore(dir string, c codec) (fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileStore{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return fileStore{dir: dir, codec: c}, nil
}

func (s fileStore) path(id string) string {
	return filepath.Join(s.dir, id+s.codec.ext)
}

func (s fileStore) save(ctx context.Context, snapshot realtime.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snapshot.ID == "" {
		return errors.New("snapshot ID is required")
	}
	data, err := s.codec.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", strings.TrimPrefix(s.codec.ext, "."), err)
	}
	fn := s.path(snapshot.ID)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (s fileStore) load(ctx context.Context, id string) (realtime.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return realtime.Snapshot{}, err
	}
	fn := s.path(id)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return realtime.Snapshot{}, fmt.Errorf("controller %q: %w", id, os.ErrNotExist)
		}
		return realtime.Snapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot realtime.Snapshot
	if err := s.codec.unmarshal(data, &snapshot); err != nil {
		return realtime.Snapshot{}, fmt.Errorf("%s unmarshal: %w", strings.TrimPrefix(s.codec.ext, "."), err)
	}
	snapshot.ID = id
	return snapshot, nil
}

// JSONPersister is a file-based persister using indented JSON.
type JSONPersister struct {
	store fileStore
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	s, err := newFileStore(dir, codec{
		ext: ".json",
		marshal: func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		},
		unmarshal: json.Unmarshal,
	})
	if err != nil {
		return nil, err
	}
	return &JSONPersister{store: s}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot realtime.Snapshot) error {
	return p.store.save(ctx, snapshot)
}

func (p *JSONPersister) Load(ctx context.Context, id string) (realtime.Snapshot, error) {
	return p.store.load(ctx, id)
}

// YAMLPersister is a file-based persister using YAML.
type YAMLPersister struct {
	store fileStore
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	s, err := newFileStore(dir, codec{ext: ".yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal})
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{store: s}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot realtime.Snapshot) error {
	return p.store.save(ctx, snapshot)
}

func (p *YAMLPersister) Load(ctx context.Context, id string) (realtime.Snapshot, error) {
	return p.store.load(ctx, id)
}

// MsgpackPersister is a file-based persister using MessagePack. Pose
// histories are large, so this is the compact choice for frequent saves.
type MsgpackPersister struct {
	store fileStore
}

// NewMsgpackPersister creates a MsgpackPersister, ensuring the directory exists.
func NewMsgpackPersister(dir string) (*MsgpackPersister, error) {
	s, err := newFileStore(dir, codec{ext: ".msgpack", marshal: msgpack.Marshal, unmarshal: msgpack.Unmarshal})
	if err != nil {
		return nil, err
	}
	return &MsgpackPersister{store: s}, nil
}

func (p *MsgpackPersister) Save(ctx context.Context, snapshot realtime.Snapshot) error {
	return p.store.save(ctx, snapshot)
}

func (p *MsgpackPersister) Load(ctx context.Context, id string) (realtime.Snapshot, error) {
	return p.store.load(ctx, id)
}

// NewPersister returns the persister for format: "json", "yaml" or "msgpack".
func NewPersister(format, dir string) (Persister, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONPersister(dir)
	case "yaml", "yml":
		return NewYAMLPersister(dir)
	case "msgpack", "mp":
		return NewMsgpackPersister(dir)
	default:
		return nil, fmt.Errorf("unknown persist format %q", format)
	}
}
