package groups

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/moothz/ravena-go/internal/domain"
	"go.uber.org/zap"
)

// Store is a read-only, file-backed group configuration provider. The file is
// a JSON array of group objects loaded once at startup; a missing or corrupt
// file means no group has custom configuration, which is a valid state.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Group
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		byID:   make(map[string]*domain.Group),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Groups file unreadable, no group config loaded",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return s
	}

	var list []*domain.Group
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warn("Groups file corrupt, no group config loaded",
			zap.String("path", path),
			zap.Error(err),
		)
		return s
	}

	for _, g := range list {
		if g != nil && g.ID != "" {
			s.byID[g.ID] = g
		}
	}

	logger.Info("Group configuration loaded",
		zap.String("path", path),
		zap.Int("groups", len(s.byID)),
	)
	return s
}

// Get implements domain.GroupProvider. Unknown conversations return nil.
func (s *Store) Get(_ context.Context, chatID string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[chatID], nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
