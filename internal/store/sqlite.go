package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/parley-ai/chat-broker/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) a SQLite-backed store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	// WAL plus a busy timeout so concurrent request transactions queue
	// instead of failing with SQLITE_BUSY.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		premium INTEGER NOT NULL DEFAULT 0,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_reset INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		position INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, position);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, premium, usage_count, last_reset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		boolToInt(user.Premium), user.UsageCount,
		user.LastReset.UnixNano(), user.CreatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, name, premium, usage_count, last_reset, created_at
		FROM users WHERE ` + where

	var user model.User
	var premium int
	var lastReset, createdAt int64

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&premium, &user.UsageCount, &lastReset, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Premium = premium != 0
	user.LastReset = time.Unix(0, lastReset)
	user.CreatedAt = time.Unix(0, createdAt)

	return &user, nil
}

// RecordExchange writes a conversation and charges the usage counter as one
// transaction. The conditional UPDATE runs first so the transaction takes
// its write lock immediately; two concurrent exchanges for the same user
// serialize on it, and the loser re-evaluates the quota guard against the
// committed counter.
func (s *SQLiteStore) RecordExchange(ctx context.Context, conv *model.Conversation, freeLimit int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET usage_count = usage_count + 1
		 WHERE id = ? AND (premium = 1 OR usage_count < ?)`,
		conv.UserID, freeLimit,
	)
	if err != nil {
		return fmt.Errorf("increment usage count: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment usage count: %w", err)
	}
	if rows == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, conv.UserID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		return ErrQuotaExceeded
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		conv.ID, conv.UserID, conv.Title, conv.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	for i, msg := range conv.Messages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, position, role, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, conv.ID, i, string(msg.Role), msg.Content, msg.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exchange: %w", err)
	}
	return nil
}

// ListConversations returns the user's conversations, most recent first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	query := `
		SELECT c.id, c.user_id, c.title, c.created_at,
		       m.id, m.role, m.content, m.created_at
		FROM conversations c
		JOIN messages m ON m.conversation_id = c.id
		WHERE c.user_id = ?
		ORDER BY c.created_at DESC, c.id, m.position`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	index := map[string]int{}

	for rows.Next() {
		var convID, convUserID, title string
		var convCreated, msgCreated int64
		var msg model.Message
		var role string

		if err := rows.Scan(&convID, &convUserID, &title, &convCreated,
			&msg.ID, &role, &msg.Content, &msgCreated); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}

		msg.Role = model.Role(role)
		msg.CreatedAt = time.Unix(0, msgCreated)

		i, ok := index[convID]
		if !ok {
			conversations = append(conversations, model.Conversation{
				ID:        convID,
				UserID:    convUserID,
				Title:     title,
				CreatedAt: time.Unix(0, convCreated),
			})
			i = len(conversations) - 1
			index[convID] = i
		}
		conversations[i].Messages = append(conversations[i].Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}

	return conversations, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
