// Package storage provides the top-level storage manager for the advisor.
package storage

import (
	"fmt"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/storage/badger"
)

// Manager owns the key-value store backing snapshot history and the
// previous-recommendation slot.
type Manager struct {
	kv     *badger.KVStorage
	logger *common.Logger
}

// NewManager opens the key-value store at the configured path.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create key-value store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		kv:     badger.NewKVStorage(store, logger),
		logger: logger,
	}, nil
}

// KeyValueStore returns the shared key-value store.
func (m *Manager) KeyValueStore() interfaces.KeyValueStore {
	return m.kv
}

// Close closes all storage backends.
func (m *Manager) Close() error {
	return m.kv.Close()
}
