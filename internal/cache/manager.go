package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmmcquay/hexreport/internal/config"
	hexgame "github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/logging"
)

// Manager caches rendered matches keyed by match content. A disabled
// manager misses on every lookup and stores nothing.
type Manager struct {
	cache   *LRU
	logger  logging.ContextLogger
	enabled bool
}

// NewManager creates a cache manager from configuration.
func NewManager(cfg *config.CacheConfig, logger logging.ContextLogger) *Manager {
	if cfg == nil || !cfg.Enabled {
		return &Manager{
			enabled: false,
			logger:  logger,
		}
	}

	return &Manager{
		cache:   NewLRU(cfg.MaxItems, cfg.MaxSizeBytes, time.Duration(cfg.TTLSeconds)*time.Second),
		logger:  logger,
		enabled: true,
	}
}

// matchKey holds every field that shows up in a rendered match.
type matchKey struct {
	BoardSide int      `json:"board_side"`
	MatchID   string   `json:"match_id"`
	XID       string   `json:"x_id"`
	OID       string   `json:"o_id"`
	Winner    string   `json:"winner"`
	Moves     []string `json:"moves"`
	TimeMS    []int    `json:"time_ms"`
}

// MatchKey returns the hex SHA-256 of the match's rendered fields.
func (m *Manager) MatchKey(match *hexgame.Match) (string, error) {
	data, err := json.Marshal(matchKey{
		BoardSide: match.BoardSide,
		MatchID:   match.MatchID,
		XID:       match.XID,
		OID:       match.OID,
		Winner:    match.Winner,
		Moves:     match.Moves,
		TimeMS:    match.TimeMS,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func (m *Manager) Get(key string) (interface{}, bool) {
	if !m.enabled {
		return nil, false
	}
	return m.cache.Get(key)
}

func (m *Manager) Put(key string, value interface{}, size int64) {
	if !m.enabled {
		return
	}
	m.cache.Put(key, value, size)
	m.logger.Debug("Cached rendered match", "key", key, "size", size)
}

func (m *Manager) Stats() Stats {
	if !m.enabled {
		return Stats{}
	}
	return m.cache.Stats()
}

func (m *Manager) Clear() {
	if m.cache != nil {
		m.cache.Clear()
	}
}

func (m *Manager) IsEnabled() bool {
	return m.enabled
}
