package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/lehigh-university-libraries/artcaptions/internal/dataset"
	"github.com/lehigh-university-libraries/artcaptions/internal/models"
)

// CaptionStore holds captions keyed by image_id and persists them as a JSON object
type CaptionStore struct {
	path     string
	captions models.Captions
	mu       sync.RWMutex
}

func New(path string) *CaptionStore {
	return &CaptionStore{
		path:     path,
		captions: make(models.Captions),
	}
}

// Open loads the captions already saved at path, if any
func Open(path string) (*CaptionStore, error) {
	s := New(path)
	existing, err := dataset.LoadMapping(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load captions: %w", err)
	}
	for k, v := range existing {
		s.captions[k] = v
	}
	return s, nil
}

func (s *CaptionStore) Path() string {
	return s.path
}

func (s *CaptionStore) Get(imageID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	caption, exists := s.captions[imageID]
	return caption, exists
}

func (s *CaptionStore) Set(imageID, caption string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captions[imageID] = caption
}

func (s *CaptionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.captions)
}

func (s *CaptionStore) All() models.Captions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(models.Captions, len(s.captions))
	for k, v := range s.captions {
		result[k] = v
	}
	return result
}

// Save writes every caption to the store's path, replacing the previous file atomically
func (s *CaptionStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := dataset.WriteJSON(s.path, s.captions); err != nil {
		return fmt.Errorf("failed to save captions: %w", err)
	}
	return nil
}
