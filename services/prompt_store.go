package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// PromptSource supplies the current system prompt.
type PromptSource interface {
	Prompt() string
}

// PromptStore holds the system prompt. With a path set, the file's content
// overrides DefaultPhysicsPrompt; a missing or empty file means the default.
type PromptStore struct {
	path string
	log  *logrus.Entry

	mu      sync.RWMutex
	current string
}

// NewPromptStore loads the prompt. An empty path always serves the default.
func NewPromptStore(path string, log *logrus.Entry) (*PromptStore, error) {
	s := &PromptStore{log: log.WithField("component", "prompt"), current: DefaultPhysicsPrompt}
	if path == "" {
		return s, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for prompt file: %w", err)
	}
	s.path = abs
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Prompt returns the prompt in effect.
func (s *PromptStore) Prompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path is the override file, or "" when there is none.
func (s *PromptStore) Path() string {
	return s.path
}

// Reload re-reads the override file.
func (s *PromptStore) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.WithField("path", s.path).Warn("PROMPT: override file not found, using default prompt")
		s.set(DefaultPhysicsPrompt)
		return nil
	case err != nil:
		return fmt.Errorf("failed to read prompt file: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		s.log.WithField("path", s.path).Warn("PROMPT: override file is empty, using default prompt")
		prompt = DefaultPhysicsPrompt
	} else {
		s.log.WithFields(logrus.Fields{"path": s.path, "chars": len(prompt)}).Info("PROMPT: loaded override")
	}
	s.set(prompt)
	return nil
}

func (s *PromptStore) set(prompt string) {
	s.mu.Lock()
	s.current = prompt
	s.mu.Unlock()
}

// Watch reloads the prompt whenever the override file changes, until ctx is
// cancelled. The parent directory is watched so editors that save by rename
// are picked up.
func (s *PromptStore) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.log.WithField("path", s.path).Info("WATCHER: watching prompt file")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := s.Reload(); err != nil {
					s.log.WithError(err).Error("WATCHER: failed to reload prompt")
				}
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.log.WithField("path", s.path).Info("WATCHER: prompt file removed, reverting to default")
				s.set(DefaultPhysicsPrompt)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("WATCHER: error")
		case <-ctx.Done():
			s.log.Info("WATCHER: context cancelled, shutting down watcher")
			return nil
		}
	}
}
