package store

import (
	"github.com/qdrant/go-client/qdrant"
)

type Config struct {
	Host       string `envconfig:"QDRANT_HOST" default:"localhost"`
	Port       int    `envconfig:"QDRANT_PORT" default:"6334"`
	Collection string `envconfig:"QDRANT_COLLECTION" default:"album_photos"`
	VectorSize uint64 `envconfig:"QDRANT_VECTOR_SIZE" default:"768"`
	ScanPage   uint32 `envconfig:"QDRANT_SCAN_PAGE" default:"1024"`
}

// New connects to qdrant and returns a PhotoStore over the configured
// collection. The collection is created on first use when absent.
func (c *Config) New() (*PhotoStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, err
	}
	return NewPhotoStore(client, c.Collection, c.VectorSize, c.ScanPage), nil
}
