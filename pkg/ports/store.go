package ports

import (
	"context"
	"time"
)

// Dataset is an uploaded solver tree in its raw JSON form.
type Dataset struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	Data      []byte    `json:"data"`
}

// DatasetStore persists uploaded datasets for the node service.
type DatasetStore interface {
	// Save persists the dataset under d.ID.
	Save(ctx context.Context, d *Dataset) error

	// Load retrieves a dataset.
	// Returns domain.ErrSessionNotFound if it does not exist.
	Load(ctx context.Context, id string) (*Dataset, error)

	// Delete removes a dataset. Deleting a missing dataset is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored datasets.
	List(ctx context.Context) ([]string, error)
}
