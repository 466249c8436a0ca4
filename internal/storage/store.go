package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"messageboard/internal/domain"
)

//go:embed schema/*.sql
var schemaFS embed.FS

type dialect struct {
	name     string
	numbered bool
}

var (
	postgresDialect = dialect{name: "postgres", numbered: true}
	sqliteDialect   = dialect{name: "sqlite"}
)

// rebind rewrites ? placeholders to $n for drivers that need numbered ones.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store implements MessageRepository and UserDirectory on database/sql.
// Timestamps are stored as unix microseconds.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func newStore(db *sql.DB, d dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: d, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("schema/" + s.dialect.name + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const selectMessage = `
	SELECT m.id, m.title, m.content, m.youtube_url, m.author_id, COALESCE(u.name, ''), m.created_at, m.updated_at
	FROM messages m LEFT JOIN users u ON u.id = m.author_id
`

// returningMessage reads back a written row. The author name is filled in
// separately by withAuthorName.
const returningMessage = `
	RETURNING id, title, content, youtube_url, author_id, '' AS author_name, created_at, updated_at
`

func (s *Store) Create(ctx context.Context, authorID int64, fields domain.Fields) (domain.Message, error) {
	query := `
		INSERT INTO messages (title, content, youtube_url, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	` + returningMessage

	now := toMicros(s.clock())
	msg, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.rebind(query),
		fields.Title,
		fields.Content,
		nullString(fields.YouTubeURL),
		authorID,
		now,
		now,
	))
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}

	return s.withAuthorName(ctx, msg), nil
}

// withAuthorName looks up the display name of msg's author. The write has
// already committed, so a failed lookup leaves the name blank instead of
// failing the call.
func (s *Store) withAuthorName(ctx context.Context, msg domain.Message) domain.Message {
	user, err := s.GetUser(ctx, msg.AuthorID)
	if err == nil {
		msg.AuthorName = user.Name
	}
	return msg
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Message, error) {
	query := selectMessage + ` WHERE m.id = ?`

	msg, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("get message %d: %w", id, err)
	}
	return msg, nil
}

// List returns one page of messages, newest first. Messages posted at the
// same instant are ordered by descending id. A page past the end comes back
// empty with the real total.
func (s *Store) List(ctx context.Context, page, pageSize int) (domain.Page, error) {
	if pageSize <= 0 {
		return domain.Page{}, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	if page < 1 {
		page = 1
	}

	// The count and the page must come from the same snapshot.
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.Page{}, fmt.Errorf("begin list: %w", err)
	}
	defer tx.Rollback()

	result := domain.Page{Page: page, PageSize: pageSize, Items: []domain.Message{}}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&result.Total); err != nil {
		return domain.Page{}, fmt.Errorf("count messages: %w", err)
	}

	// Comparing page numbers keeps (page-1)*pageSize from overflowing.
	if page-1 >= (result.Total+pageSize-1)/pageSize {
		return result, tx.Commit()
	}

	query := selectMessage + ` ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`

	rows, err := tx.QueryContext(ctx, s.dialect.rebind(query), pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.Page{}, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	result.Items = make([]domain.Message, 0, pageSize)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return domain.Page{}, fmt.Errorf("scan message: %w", err)
		}
		result.Items = append(result.Items, msg)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("list messages: %w", err)
	}
	rows.Close()

	return result, tx.Commit()
}

func (s *Store) Update(ctx context.Context, id int64, fields domain.Fields) (domain.Message, error) {
	// updated_at always moves forward, even when the clock has not.
	query := `
		UPDATE messages
		SET title = ?, content = ?, youtube_url = ?,
			updated_at = CASE WHEN CAST(? AS BIGINT) > updated_at THEN CAST(? AS BIGINT) ELSE updated_at + 1 END
		WHERE id = ?
	` + returningMessage

	now := toMicros(s.clock())
	msg, err := scanMessage(s.db.QueryRowContext(ctx, s.dialect.rebind(query),
		fields.Title,
		fields.Content,
		nullString(fields.YouTubeURL),
		now,
		now,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("update message %d: %w", id, err)
	}

	return s.withAuthorName(ctx, msg), nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM messages WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	return expectOneRow(res)
}

func (s *Store) ExistsByYouTubeURL(ctx context.Context, url string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE youtube_url = ?)`

	var exists bool
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(query), url).Scan(&exists)
	return exists, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT id, name FROM users WHERE id = ?`), id).
		Scan(&user.ID, &user.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`

	if _, err := s.db.ExecContext(ctx, s.dialect.rebind(query), user.ID, user.Name); err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (domain.Message, error) {
	var (
		msg        domain.Message
		youtubeURL sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(
		&msg.ID,
		&msg.Title,
		&msg.Content,
		&youtubeURL,
		&msg.AuthorID,
		&msg.AuthorName,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Message{}, err
	}

	msg.YouTubeURL = youtubeURL.String
	msg.CreatedAt = fromMicros(createdAt)
	msg.UpdatedAt = fromMicros(updatedAt)
	return msg, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}
