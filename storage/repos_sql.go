package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQL repos implementation

type sqlUserRepo struct {
	db      *sql.DB
	dialect string
}

func placeholder(dialect string, n int) string {
	if dialect == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (r *sqlUserRepo) Ensure(externalID string) (int64, error) {
	if id, err := r.GetByExternalID(externalID); err == nil {
		return id, nil
	}

	var id int64
	u := uuid.New().String()
	now := time.Now()

	var query string
	if r.dialect == "postgres" {
		query = "INSERT INTO af_user (uuid, external_id, date_created) VALUES ($1, $2, $3) RETURNING id"
	} else {
		query = "INSERT INTO af_user (uuid, external_id, date_created) VALUES (?, ?, ?) RETURNING id"
	}

	err := r.db.QueryRow(query, u, externalID, now).Scan(&id)
	if err != nil {
		// Losing a concurrent creation is fine; read the winner.
		return r.GetByExternalID(externalID)
	}
	return id, nil
}

func (r *sqlUserRepo) GetByExternalID(externalID string) (int64, error) {
	var id int64
	query := "SELECT id FROM af_user WHERE external_id = " + placeholder(r.dialect, 1)
	err := r.db.QueryRow(query, externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

type sqlConversationRepo struct {
	db      *sql.DB
	dialect string
}

func (r *sqlConversationRepo) Create(userID int64, title string) (Conversation, error) {
	u := uuid.New().String()
	now := time.Now()

	var query string
	if r.dialect == "postgres" {
		query = "INSERT INTO af_conversation (uuid, user_id, title, date_created, date_updated) VALUES ($1, $2, $3, $4, $5) RETURNING id"
	} else {
		query = "INSERT INTO af_conversation (uuid, user_id, title, date_created, date_updated) VALUES (?, ?, ?, ?, ?) RETURNING id"
	}

	var id int64
	if err := r.db.QueryRow(query, u, userID, title, now, now).Scan(&id); err != nil {
		return Conversation{}, err
	}
	return Conversation{ID: id, UUID: u, UserID: userID, Title: title, UpdatedAt: now}, nil
}

func (r *sqlConversationRepo) GetByUUID(convUUID string) (Conversation, error) {
	query := "SELECT id, uuid, user_id, title, date_updated FROM af_conversation WHERE uuid = " + placeholder(r.dialect, 1)

	var c Conversation
	var updatedAny any
	err := r.db.QueryRow(query, convUUID).Scan(&c.ID, &c.UUID, &c.UserID, &c.Title, &updatedAny)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	if t, ok := decodeAnyTime(updatedAny); ok {
		c.UpdatedAt = t
	}
	return c, nil
}

func (r *sqlConversationRepo) ListByUser(userID int64, limit int) ([]Conversation, error) {
	var query string
	if r.dialect == "postgres" {
		query = "SELECT id, uuid, user_id, title, date_updated FROM af_conversation WHERE user_id = $1 ORDER BY date_updated DESC LIMIT $2"
	} else {
		query = "SELECT id, uuid, user_id, title, date_updated FROM af_conversation WHERE user_id = ? ORDER BY date_updated DESC LIMIT ?"
	}

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		var updatedAny any
		if err := rows.Scan(&c.ID, &c.UUID, &c.UserID, &c.Title, &updatedAny); err != nil {
			return nil, err
		}
		if t, ok := decodeAnyTime(updatedAny); ok {
			c.UpdatedAt = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *sqlConversationRepo) Rename(conversationID int64, title string) error {
	now := time.Now()
	var query string
	if r.dialect == "postgres" {
		query = "UPDATE af_conversation SET title = $1, date_updated = $2 WHERE id = $3"
	} else {
		query = "UPDATE af_conversation SET title = ?, date_updated = ? WHERE id = ?"
	}
	_, err := r.db.Exec(query, title, now, conversationID)
	return err
}

func (r *sqlConversationRepo) Touch(conversationID int64) error {
	now := time.Now()
	var query string
	if r.dialect == "postgres" {
		query = "UPDATE af_conversation SET date_updated = $1 WHERE id = $2"
	} else {
		query = "UPDATE af_conversation SET date_updated = ? WHERE id = ?"
	}
	_, err := r.db.Exec(query, now, conversationID)
	return err
}

type sqlMessageRepo struct {
	db      *sql.DB
	dialect string
}

func (r *sqlMessageRepo) Create(conversationID, userID int64, role, content string) (Message, error) {
	u := uuid.New().String()
	now := time.Now()

	var query string
	if r.dialect == "postgres" {
		query = "INSERT INTO af_conversation_message (uuid, conversation_id, user_id, role, content, date_created) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"
	} else {
		query = "INSERT INTO af_conversation_message (uuid, conversation_id, user_id, role, content, date_created) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"
	}

	var id int64
	if err := r.db.QueryRow(query, u, conversationID, userID, role, content, now).Scan(&id); err != nil {
		return Message{}, err
	}
	return Message{ID: id, UUID: u, ConversationID: conversationID, Role: role, Content: content, CreatedAt: now}, nil
}

func (r *sqlMessageRepo) ListAsc(conversationID int64, limit int) ([]Message, error) {
	var query string
	if r.dialect == "postgres" {
		query = "SELECT id, uuid, conversation_id, role, content, date_created FROM af_conversation_message WHERE conversation_id = $1 ORDER BY date_created ASC, id ASC LIMIT $2"
	} else {
		query = "SELECT id, uuid, conversation_id, role, content, date_created FROM af_conversation_message WHERE conversation_id = ? ORDER BY date_created ASC, id ASC LIMIT ?"
	}
	return r.scanMessages(query, conversationID, limit, false)
}

func (r *sqlMessageRepo) ListRecent(conversationID int64, limit int) ([]Message, error) {
	// Newest first from the database, then reversed so callers always see
	// oldest-to-newest order.
	var query string
	if r.dialect == "postgres" {
		query = "SELECT id, uuid, conversation_id, role, content, date_created FROM af_conversation_message WHERE conversation_id = $1 ORDER BY date_created DESC, id DESC LIMIT $2"
	} else {
		query = "SELECT id, uuid, conversation_id, role, content, date_created FROM af_conversation_message WHERE conversation_id = ? ORDER BY date_created DESC, id DESC LIMIT ?"
	}
	return r.scanMessages(query, conversationID, limit, true)
}

func (r *sqlMessageRepo) scanMessages(query string, conversationID int64, limit int, reverse bool) ([]Message, error) {
	rows, err := r.db.Query(query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var createdAny any
		if err := rows.Scan(&m.ID, &m.UUID, &m.ConversationID, &m.Role, &m.Content, &createdAny); err != nil {
			return nil, err
		}
		if t, ok := decodeAnyTime(createdAny); ok {
			m.CreatedAt = t
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

type sqlFactRepo struct {
	db      *sql.DB
	dialect string
}

func (r *sqlFactRepo) Upsert(userID int64, key, value string) error {
	now := time.Now()
	var query string
	if r.dialect == "postgres" {
		query = `INSERT INTO af_user_fact (user_id, fact_key, fact_value, date_created, date_updated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, fact_key) DO UPDATE SET
			fact_value = EXCLUDED.fact_value,
			date_updated = EXCLUDED.date_updated`
	} else {
		query = `INSERT INTO af_user_fact (user_id, fact_key, fact_value, date_created, date_updated)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, fact_key) DO UPDATE SET
			fact_value = excluded.fact_value,
			date_updated = excluded.date_updated`
	}
	_, err := r.db.Exec(query, userID, key, value, now, now)
	return err
}

func (r *sqlFactRepo) FindAll(userID int64) ([]Fact, error) {
	query := "SELECT fact_key, fact_value FROM af_user_fact WHERE user_id = " + placeholder(r.dialect, 1)
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.Key, &f.Value); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SQL driver repos
type sqlRepos struct {
	user         UserRepo
	conversation ConversationRepo
	message      MessageRepo
	fact         FactRepo
}

func (d *SQLDriver) User() UserRepo {
	if d.repos == nil {
		d.repos = &sqlRepos{
			user:         &sqlUserRepo{db: d.db(), dialect: d.dialect},
			conversation: &sqlConversationRepo{db: d.db(), dialect: d.dialect},
			message:      &sqlMessageRepo{db: d.db(), dialect: d.dialect},
			fact:         &sqlFactRepo{db: d.db(), dialect: d.dialect},
		}
	}
	return d.repos.user
}

func (d *SQLDriver) Conversation() ConversationRepo {
	if d.repos == nil {
		d.User() // Initialize repos
	}
	return d.repos.conversation
}

func (d *SQLDriver) Message() MessageRepo {
	if d.repos == nil {
		d.User()
	}
	return d.repos.message
}

func (d *SQLDriver) Fact() FactRepo {
	if d.repos == nil {
		d.User()
	}
	return d.repos.fact
}
