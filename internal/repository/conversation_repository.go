package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &pgConversationRepository{pool: pool}
}

// orderPair normalizes the participant pair so (A,B) and (B,A) map to the
// same conversation row.
func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (r *pgConversationRepository) FindOrCreate(ctx context.Context, userA, userB string) (*Conversation, error) {
	one, two := orderPair(userA, userB)
	query := `
		INSERT INTO conversations (user_one_id, user_two_id)
		VALUES ($1, $2)
		ON CONFLICT (user_one_id, user_two_id) DO UPDATE SET updated_at = conversations.updated_at
		RETURNING id, user_one_id, user_two_id, created_at, updated_at
	`
	conv := &Conversation{}
	err := r.pool.QueryRow(ctx, query, one, two).Scan(
		&conv.ID, &conv.UserOneID, &conv.UserTwoID, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *pgConversationRepository) FindByID(ctx context.Context, id string) (*Conversation, error) {
	query := `SELECT id, user_one_id, user_two_id, created_at, updated_at FROM conversations WHERE id = $1`
	conv := &Conversation{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.UserOneID, &conv.UserTwoID, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *pgConversationRepository) FindByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	// Peer profile and latest message are expanded so the conversation
	// list renders without extra round trips.
	query := `
		SELECT c.id, c.user_one_id, c.user_two_id, c.created_at, c.updated_at,
			` + prefixedUserColumns("u") + `,
			m.id, m.conversation_id, m.sender_id, m.content, m.is_read, m.created_at
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user_one_id = $1 THEN c.user_two_id ELSE c.user_one_id END
		LEFT JOIN LATERAL (
			SELECT id, conversation_id, sender_id, content, is_read, created_at
			FROM messages WHERE conversation_id = c.id
			ORDER BY created_at DESC LIMIT 1
		) m ON TRUE
		WHERE c.user_one_id = $1 OR c.user_two_id = $1
		ORDER BY c.updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*Conversation
	for rows.Next() {
		conv := &Conversation{Peer: &User{}}
		u := conv.Peer
		var msgID, msgConvID, msgSenderID, msgContent *string
		var msgIsRead *bool
		var msgCreatedAt *time.Time
		if err := rows.Scan(
			&conv.ID, &conv.UserOneID, &conv.UserTwoID, &conv.CreatedAt, &conv.UpdatedAt,
			&u.ID, &u.Email, &u.Password, &u.Name, &u.ContactInfo, &u.Skills,
			&u.ExperienceDescription, &u.WorkMode, &u.PartnerDescription,
			&u.LocationPreference, &u.SpecificLocation, &u.IsPublic, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt,
			&msgID, &msgConvID, &msgSenderID, &msgContent, &msgIsRead, &msgCreatedAt,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			conv.LastMessage = &Message{
				ID:             *msgID,
				ConversationID: *msgConvID,
				SenderID:       *msgSenderID,
				Content:        *msgContent,
				IsRead:         *msgIsRead,
				CreatedAt:      *msgCreatedAt,
			}
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (r *pgConversationRepository) CreateMessage(ctx context.Context, msg *Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`
	err = tx.QueryRow(ctx, query, msg.ConversationID, msg.SenderID, msg.Content).
		Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, msg.ConversationID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgConversationRepository) FindMessages(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *pgConversationRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`
	_, err := r.pool.Exec(ctx, query, conversationID, readerID)
	return err
}

func (r *pgConversationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.user_one_id = $1 OR c.user_two_id = $1)
			AND m.sender_id <> $1 AND m.is_read = FALSE
	`
	var count int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}
