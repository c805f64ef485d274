package store

import (
	"context"
	"encoding/json"
	"time"

	"property-hierarchy/internal/common"
	"property-hierarchy/internal/storage/block"
)

// SnapshotPersister saves and loads the full node collection. Implemented
// over the block storage backends so snapshots can live on local disk or S3.
type SnapshotPersister interface {
	Save(ctx context.Context, records []Record) error
	Load(ctx context.Context) (records []Record, found bool, err error)
}

// snapshotFile is the on-disk envelope around the records.
type snapshotFile struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Nodes   []Record  `json:"nodes"`
}

const snapshotVersion = 1

// JSONSnapshots persists the node collection as a single JSON blob.
type JSONSnapshots struct {
	storage block.Storage
	path    string
}

// NewJSONSnapshots creates a persister writing to path on the given backend.
func NewJSONSnapshots(storage block.Storage, path string) *JSONSnapshots {
	return &JSONSnapshots{storage: storage, path: path}
}

// Save writes all records as one snapshot blob.
func (p *JSONSnapshots) Save(ctx context.Context, records []Record) error {
	writer, err := p.storage.Writer(ctx, p.path)
	if err != nil {
		return common.NewErrorWithCause(common.ErrSnapshotUnavailable,
			"failed to open snapshot for writing", err)
	}

	file := snapshotFile{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Nodes:   records,
	}
	if err := json.NewEncoder(writer).Encode(&file); err != nil {
		writer.Close()
		return common.NewErrorWithCause(common.ErrSnapshotUnavailable,
			"failed to encode snapshot", err)
	}
	if err := writer.Close(); err != nil {
		return common.NewErrorWithCause(common.ErrSnapshotUnavailable,
			"failed to commit snapshot", err)
	}
	return nil
}

// Load reads the snapshot blob; found is false when none exists yet.
func (p *JSONSnapshots) Load(ctx context.Context) ([]Record, bool, error) {
	reader, err := p.storage.Reader(ctx, p.path)
	if err != nil {
		if block.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, common.NewErrorWithCause(common.ErrSnapshotUnavailable,
			"failed to open snapshot", err)
	}
	defer reader.Close()

	var file snapshotFile
	if err := json.NewDecoder(reader).Decode(&file); err != nil {
		return nil, false, common.NewErrorWithCause(common.ErrSnapshotCorrupted,
			"failed to decode snapshot", err)
	}
	return file.Nodes, true, nil
}
