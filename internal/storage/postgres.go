package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	ttl    time.Duration
	logger *zap.Logger
}

// NewPostgresStorage treats contexts not updated within ttl as missing; a
// zero ttl keeps them forever.
func NewPostgresStorage(ctx context.Context, config DatabaseConfig, ttl time.Duration, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, ttl: ttl, logger: logger}

	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("PostgreSQL storage ready",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) LoadContext(ctx context.Context, conversationID string) (models.ConversationContext, error) {
	query := `
		SELECT last_username
		FROM conversation_contexts
		WHERE conversation_id = $1`
	args := []any{conversationID}
	if s.ttl > 0 {
		query += ` AND updated_at > NOW() - make_interval(secs => $2)`
		args = append(args, s.ttl.Seconds())
	}

	var lastUsername sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&lastUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConversationContext{}, nil
	}
	if err != nil {
		return models.ConversationContext{}, fmt.Errorf("error loading conversation context: %w", err)
	}
	return models.ConversationContext{LastUsername: lastUsername.String}, nil
}

func (s *PostgresStorage) SaveContext(ctx context.Context, conversationID string, cc models.ConversationContext) error {
	query := `
		INSERT INTO conversation_contexts (conversation_id, last_username, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (conversation_id)
		DO UPDATE SET last_username = EXCLUDED.last_username, updated_at = NOW()`

	lastUsername := sql.NullString{String: cc.LastUsername, Valid: cc.LastUsername != ""}
	if _, err := s.db.ExecContext(ctx, query, conversationID, lastUsername); err != nil {
		return fmt.Errorf("error saving conversation context: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteContext(ctx context.Context, conversationID string) error {
	query := `DELETE FROM conversation_contexts WHERE conversation_id = $1`

	if _, err := s.db.ExecContext(ctx, query, conversationID); err != nil {
		return fmt.Errorf("error deleting conversation context: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
