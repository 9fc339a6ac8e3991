package storage

import (
	"context"
	"fmt"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/storage/memory"
	"github.com/gravadigital/giftlist-api/internal/storage/postgres"
)

// StorageType represents the type of storage backend
type StorageType string

const (
	// StorageTypePostgres represents PostgreSQL storage
	StorageTypePostgres StorageType = "postgres"
	// StorageTypeMemory keeps everything in process; nothing survives a restart
	StorageTypeMemory StorageType = "memory"
)

// Factory provides a factory pattern for creating storage containers
type Factory struct {
	storageType StorageType
}

// NewFactory creates a new storage factory
func NewFactory(storageType StorageType) *Factory {
	return &Factory{
		storageType: storageType,
	}
}

// CreateContainer creates a storage container based on the configured type
func (f *Factory) CreateContainer(cfg *config.Config) (*Container, error) {
	switch f.storageType {
	case StorageTypePostgres:
		pc, err := postgres.NewContainer(cfg)
		if err != nil {
			return nil, err
		}
		return NewContainer(pc.Lists(), pc.Drafts(), pc.Users(), pc.Payments(), pc.Health, pc.Close), nil
	case StorageTypeMemory:
		return NewMemoryContainer(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", f.storageType)
	}
}

// NewMemoryContainer builds a container over a fresh in-process store
func NewMemoryContainer() *Container {
	store := memory.NewStore()
	return NewContainer(store.Lists(), store.Drafts(), store.Users(), store.Payments(),
		func(context.Context) error { return nil }, nil)
}

// GetSupportedTypes returns a list of supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{
		StorageTypePostgres,
		StorageTypeMemory,
	}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(storageType)

	for _, supported := range GetSupportedTypes() {
		if st == supported {
			return st, nil
		}
	}

	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}

// DefaultFactory returns a factory configured with the default storage type
func DefaultFactory() *Factory {
	return NewFactory(StorageTypePostgres)
}
