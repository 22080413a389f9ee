package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"modelmove/logger"
	server_errors "modelmove/server/errors"
)

//Persists the logical schema between runs.
type Syncer interface {
	//Returns an empty state if nothing has been saved yet
	Get(ctx context.Context) (*ProjectState, error)
	Save(ctx context.Context, projectState *ProjectState) error
}

type FileSyncer struct {
	path string
}

func (fs *FileSyncer) Get(ctx context.Context) (*ProjectState, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return NewProjectState(), nil
	}
	if err != nil {
		return nil, storageError(errors.Wrapf(err, "failed to read state file '%s'", fs.path))
	}
	projectState := NewProjectState()
	if err := json.Unmarshal(data, projectState); err != nil {
		return nil, storageError(errors.Wrapf(err, "failed to decode state file '%s'", fs.path))
	}
	if projectState.Models == nil {
		projectState.Models = make(map[string]*ModelState)
	}
	return projectState, nil
}

func (fs *FileSyncer) Save(ctx context.Context, projectState *ProjectState) error {
	data, err := json.MarshalIndent(projectState, "", "  ")
	if err != nil {
		return storageError(errors.Wrap(err, "failed to encode state"))
	}
	if dir := filepath.Dir(fs.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return storageError(errors.Wrapf(err, "failed to create directory '%s'", dir))
		}
	}
	//replace atomically
	tmpPath := fs.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return storageError(errors.Wrapf(err, "failed to write state file '%s'", tmpPath))
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			logger.Warn("Can't remove file '%s': %s", tmpPath, removeErr.Error())
		}
		return storageError(errors.Wrapf(err, "failed to replace state file '%s'", fs.path))
	}
	logger.Debug("Saved %d model(s) to '%s'", len(projectState.Models), fs.path)
	return nil
}

func NewFileSyncer(path string) *FileSyncer {
	return &FileSyncer{path: path}
}

//Keeps the state in memory; used to stage changes until the DB transaction commits.
type MemorySyncer struct {
	mu           sync.RWMutex
	projectState *ProjectState
}

func (ms *MemorySyncer) Get(ctx context.Context) (*ProjectState, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.projectState.Clone(), nil
}

func (ms *MemorySyncer) Save(ctx context.Context, projectState *ProjectState) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.projectState = projectState.Clone()
	return nil
}

func NewMemorySyncer(projectState *ProjectState) *MemorySyncer {
	if projectState == nil {
		projectState = NewProjectState()
	}
	return &MemorySyncer{projectState: projectState.Clone()}
}

func storageError(err error) *server_errors.ServerError {
	return server_errors.NewFatalError(ErrStateStorage, err.Error(), nil)
}
