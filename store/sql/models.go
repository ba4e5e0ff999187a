package sqlstore

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// receiverSecretRecord holds one secret key of one receiver configuration.
// A rotation in flight is represented as multiple rows sharing the same
// receiver_name and configuration_id, ordered by position.
type receiverSecretRecord struct {
	bun.BaseModel `bun:"table:receiver_secrets,alias:rs"`

	ID              string    `bun:"id,pk"`
	ReceiverName    string    `bun:"receiver_name,notnull"`
	ConfigurationID string    `bun:"configuration_id,notnull"`
	SecretKey       string    `bun:"secret_key,notnull"`
	Position        int       `bun:"position,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newReceiverSecretRecord(receiverName, configurationID, secretKey string, position int, now time.Time) *receiverSecretRecord {
	return &receiverSecretRecord{
		ID:              uuid.NewString(),
		ReceiverName:    strings.TrimSpace(strings.ToLower(receiverName)),
		ConfigurationID: strings.TrimSpace(strings.ToLower(configurationID)),
		SecretKey:       secretKey,
		Position:        position,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
