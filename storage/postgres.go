package storage

import (
	"commonroom/storage/migrations"
	"commonroom/storage/models"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
	"strings"
)

// PostgresManager stores users and posts as JSONB documents, one row per
// document, mirroring the document model of the Mongo driver.
type PostgresManager struct {
	pool *pgxpool.Pool
}

func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresManager{pool: pool}, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		log.Errorf("Error running migrations: %v", err)
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (m *PostgresManager) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, "SELECT doc FROM users WHERE id = $1", id)
}

func (m *PostgresManager) FindUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return m.findUser(ctx, "SELECT doc FROM users WHERE username = $1", handle)
}

func (m *PostgresManager) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var doc []byte
	err := m.pool.QueryRow(ctx, query, arg).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Error finding user: %v", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	var user models.User
	if err = json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (m *PostgresManager) FindUsers(ctx context.Context, query UserQuery) ([]*models.User, error) {
	sqlQuery, args := buildUserSelect(query)
	rows, err := m.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		log.Errorf("Error finding users: %v", err)
		return nil, fmt.Errorf("find users: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	users := make([]*models.User, 0, len(docs))
	for _, doc := range docs {
		var user models.User
		if err = json.Unmarshal(doc, &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

func (m *PostgresManager) SaveUser(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = m.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, created_at, doc) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, created_at = EXCLUDED.created_at, doc = EXCLUDED.doc`,
		user.ID, user.Username, user.CreatedAt, doc,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("save user %s: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		log.Errorf("Error saving user '%s': %v", user.ID, err)
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (m *PostgresManager) DeleteUser(ctx context.Context, id string) error {
	tag, err := m.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		log.Errorf("Error deleting user: %v", err)
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *PostgresManager) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	var doc []byte
	err := m.pool.QueryRow(ctx, "SELECT doc FROM posts WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Errorf("Error finding post: %v", err)
		return nil, fmt.Errorf("find post: %w", err)
	}

	var post models.Post
	if err = json.Unmarshal(doc, &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &post, nil
}

func (m *PostgresManager) FindPosts(ctx context.Context, query PostQuery) ([]*models.Post, error) {
	sqlQuery, args := buildPostSelect(query)
	rows, err := m.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		log.Errorf("Error finding posts: %v", err)
		return nil, fmt.Errorf("find posts: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	posts := make([]*models.Post, 0, len(docs))
	for _, doc := range docs {
		var post models.Post
		if err = json.Unmarshal(doc, &post); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

func (m *PostgresManager) SavePost(ctx context.Context, post *models.Post) error {
	doc, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	_, err = m.pool.Exec(
		ctx,
		`INSERT INTO posts (id, created_at, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET created_at = EXCLUDED.created_at, doc = EXCLUDED.doc`,
		post.ID, post.CreatedAt, doc,
	)
	if err != nil {
		log.Errorf("Error saving post '%s': %v", post.ID, err)
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

func (m *PostgresManager) DeletePost(ctx context.Context, id string) error {
	tag, err := m.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		log.Errorf("Error deleting post: %v", err)
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *PostgresManager) DeletePosts(ctx context.Context, query PostQuery) (int64, error) {
	where, args := buildPostWhere(query)
	tag, err := m.pool.Exec(ctx, "DELETE FROM posts"+where, args...)
	if err != nil {
		log.Errorf("Error deleting posts: %v", err)
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (m *PostgresManager) Close(context.Context) error {
	m.pool.Close()
	return nil
}

func orderClause(order Order) string {
	if order == NewestFirst {
		return " ORDER BY created_at DESC, seq"
	}
	return " ORDER BY seq"
}

func buildUserSelect(query UserQuery) (string, []any) {
	if query.EdgeHandle == "" {
		return "SELECT doc FROM users" + orderClause(query.Order), nil
	}
	where := " WHERE (doc->'following' @> jsonb_build_array(jsonb_build_object('username', $1::text))" +
		" OR doc->'followers' @> jsonb_build_array(jsonb_build_object('username', $1::text)))"
	return "SELECT doc FROM users" + where + orderClause(query.Order), []any{query.EdgeHandle}
}

func buildPostSelect(query PostQuery) (string, []any) {
	where, args := buildPostWhere(query)
	return "SELECT doc FROM posts" + where + orderClause(query.Order), args
}

func buildPostWhere(query PostQuery) (string, []any) {
	var conditions []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.AuthorID != "" {
		conditions = append(conditions, "doc->'userInfo'->>'userId' = "+next(query.AuthorID))
	}
	if len(query.AuthorHandles) > 0 {
		conditions = append(conditions, "doc->'userInfo'->>'username' = ANY("+next(query.AuthorHandles)+")")
	}
	if query.LikedBy != "" {
		conditions = append(conditions, "doc->'likes' ? "+next(query.LikedBy))
	}
	if query.Participant != "" {
		p := next(query.Participant)
		conditions = append(conditions, fmt.Sprintf(
			"(doc->'likes' ? %[1]s OR doc->'dislikes' ? %[1]s"+
				" OR doc->'comments' @> jsonb_build_array(jsonb_build_object('userInfo', jsonb_build_object('username', %[1]s::text))))",
			p,
		))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
