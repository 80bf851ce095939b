package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
	"github.com/arcanalab/tarot-api/internal/store"
)

// PostgresUserStore implements store.UserStore using PostgreSQL.
type PostgresUserStore struct {
	db store.DBTX
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// EnsureExists implements store.UserStore.EnsureExists. The upsert makes
// first contact and repeat contact the same single statement.
func (s *PostgresUserStore) EnsureExists(ctx context.Context, openID string) error {
	log := logger.FromContext(ctx)

	user, err := domain.NewUser(openID)
	if err != nil {
		return store.ErrInvalidEntity
	}

	query := `
		INSERT INTO users (openid, nickname, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (openid)
		DO UPDATE SET updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		user.OpenID,
		user.Nickname,
		user.AvatarURL,
		user.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert user",
			"openid", openID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByOpenID implements store.UserStore.GetByOpenID.
func (s *PostgresUserStore) GetByOpenID(ctx context.Context, openID string) (*domain.User, error) {
	query := `
		SELECT openid, nickname, avatar_url, created_at, updated_at
		FROM users
		WHERE openid = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, openID).Scan(
		&user.OpenID,
		&user.Nickname,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}

	return &user, nil
}
