package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-receivers/core"
)

// SecretStore is the database-backed secret source. One row holds one key;
// rotations replace the row set for a configuration atomically so readers
// always see either the old or the new key set.
type SecretStore struct {
	db   *bun.DB
	repo repository.Repository[*receiverSecretRecord]
}

func NewSecretStore(db *bun.DB) (*SecretStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*receiverSecretRecord](db, receiverSecretHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid receiver secret repository wiring: %w", err)
		}
	}
	return &SecretStore{db: db, repo: repo}, nil
}

// SecretKeys returns the key set for a receiver configuration ordered by
// position. A configuration with no rows reports found=false, not an error.
func (s *SecretStore) SecretKeys(ctx context.Context, receiverName, configurationID string) (core.SecretKeySet, bool, error) {
	if s == nil || s.repo == nil {
		return nil, false, fmt.Errorf("sqlstore: secret store is not configured")
	}
	key := core.ReceiverConfigKey{
		ReceiverName:    receiverName,
		ConfigurationID: configurationID,
	}.Normalize()
	if key.ReceiverName == "" {
		return nil, false, fmt.Errorf("sqlstore: receiver name is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("receiver_name", "=", key.ReceiverName),
		repository.SelectBy("configuration_id", "=", key.ConfigurationID),
		repository.OrderBy("position ASC"),
	)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}

	keys := make(core.SecretKeySet, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		keys = append(keys, record.SecretKey)
	}
	if keys.Empty() {
		return nil, false, nil
	}
	return keys, true, nil
}

// HasSecretKeys reports whether any configuration of the receiver has keys.
func (s *SecretStore) HasSecretKeys(ctx context.Context, receiverName string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: secret store is not configured")
	}
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return false, fmt.Errorf("sqlstore: receiver name is required")
	}
	count, err := s.db.NewSelect().
		Model((*receiverSecretRecord)(nil)).
		Where("receiver_name = ?", name).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RotateSecretKeys replaces the key set of one configuration in a single
// transaction. Passing an empty set removes the configuration entirely.
func (s *SecretStore) RotateSecretKeys(ctx context.Context, receiverName, configurationID string, keys core.SecretKeySet) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: secret store is not configured")
	}
	key := core.ReceiverConfigKey{
		ReceiverName:    receiverName,
		ConfigurationID: configurationID,
	}.Normalize()
	if key.ReceiverName == "" {
		return fmt.Errorf("sqlstore: receiver name is required")
	}

	now := time.Now().UTC()
	records := make([]*receiverSecretRecord, 0, len(keys))
	for i, secret := range keys {
		if strings.TrimSpace(secret) == "" {
			continue
		}
		records = append(records, newReceiverSecretRecord(key.ReceiverName, key.ConfigurationID, secret, i, now))
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*receiverSecretRecord)(nil)).
			Where("receiver_name = ?", key.ReceiverName).
			Where("configuration_id = ?", key.ConfigurationID).
			Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore: clear previous key set: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().
			Model(&records).
			Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore: insert rotated key set: %w", err)
		}
		return nil
	})
}

// Configurations lists the configuration ids of one receiver, sorted.
func (s *SecretStore) Configurations(ctx context.Context, receiverName string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: secret store is not configured")
	}
	name := strings.TrimSpace(strings.ToLower(receiverName))
	if name == "" {
		return nil, fmt.Errorf("sqlstore: receiver name is required")
	}
	var ids []string
	if err := s.db.NewSelect().
		Model((*receiverSecretRecord)(nil)).
		ColumnExpr("DISTINCT configuration_id").
		Where("receiver_name = ?", name).
		OrderExpr("configuration_id ASC").
		Scan(ctx, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
