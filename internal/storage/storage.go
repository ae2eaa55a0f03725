// Package storage persists game records in BadgerDB so games survive a server restart.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chess-backend/internal/config"
)

const gamePrefix = "game/"

var ErrNotFound = errors.New("game record not found")

// GameRecord is everything needed to rebuild a game session: the start position and the
// moves played from it. FEN is the current position, kept for listing and as a fallback
// when the move log cannot be replayed.
type GameRecord struct {
	ID        string    `json:"id"`
	StartFEN  string    `json:"start_fen"`
	FEN       string    `json:"fen"`
	Turn      string    `json:"turn"`
	Moves     []string  `json:"moves"`
	White     string    `json:"white,omitempty"`
	Black     string    `json:"black,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// Open opens the badger database described by cfg: in memory when cfg.InMemory is set,
// otherwise under cfg.Dir.
func Open(cfg config.StorageConfig, log zerolog.Logger) (*Storage, error) {
	log = log.With().Str("component", "storage").Logger()

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("storage dir is required")
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	log.Info().Str("dir", cfg.Dir).Bool("in_memory", cfg.InMemory).Msg("storage opened")
	return &Storage{db: db, log: log}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// SaveGame writes rec, replacing any record with the same ID.
func (s *Storage) SaveGame(rec GameRecord) error {
	if rec.ID == "" {
		return errors.New("game record has no id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
}

func (s *Storage) LoadGame(id string) (GameRecord, error) {
	var rec GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// ListGames returns every stored record ordered by creation time. Records that fail to
// decode are logged and skipped.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var recs []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec GameRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				s.log.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping unreadable game record")
				continue
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

// DeleteGame removes the record for id. Deleting a missing record is not an error.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// badgerLogger routes badger's internal logging through zerolog. Badger is chatty at info
// level, so its info output is demoted to debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(trimNewline(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(trimNewline(format), args...)
}

func trimNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
