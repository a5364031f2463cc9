package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
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

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS mothers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		age INTEGER,
		country TEXT,
		delivered_at INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL UNIQUE,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_questions_order ON questions(order_index) WHERE is_active = 1;

	CREATE TABLE IF NOT EXISTS question_options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL REFERENCES questions(id),
		label TEXT NOT NULL,
		value TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_options_question ON question_options(question_id, order_index);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mother_id INTEGER NOT NULL REFERENCES mothers(id),
		question_id INTEGER NOT NULL REFERENCES questions(id),
		answer_text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_answers_mother_question ON answers(mother_id, question_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateMother inserts a new mother record and returns its id.
func (s *SQLiteStore) CreateMother(ctx context.Context, m *domain.Mother) (int64, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM mothers WHERE name = ?`, m.Name).Scan(&existing)
	if err == nil {
		return 0, ErrNameTaken
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check existing mother: %w", err)
	}

	var age interface{}
	if m.Age != nil {
		age = *m.Age
	}
	var deliveredAt interface{}
	if m.DeliveredAt != nil {
		deliveredAt = m.DeliveredAt.Unix()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mothers (name, password_hash, age, country, delivered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.PasswordHash, age, m.Country, deliveredAt, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert mother: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mother insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) scanMother(row *sql.Row) (*domain.Mother, error) {
	var m domain.Mother
	var age sql.NullInt64
	var country sql.NullString
	var deliveredAt sql.NullInt64
	var createdAt int64

	err := row.Scan(&m.ID, &m.Name, &m.PasswordHash, &age, &country, &deliveredAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan mother row: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		m.Age = &v
	}
	m.Country = country.String
	if deliveredAt.Valid {
		t := time.Unix(deliveredAt.Int64, 0)
		m.DeliveredAt = &t
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

// GetMother retrieves a mother by id.
func (s *SQLiteStore) GetMother(ctx context.Context, id int64) (*domain.Mother, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, age, country, delivered_at, created_at
		FROM mothers WHERE id = ?`, id)
	return s.scanMother(row)
}

// GetMotherByName retrieves a mother by name.
func (s *SQLiteStore) GetMotherByName(ctx context.Context, name string) (*domain.Mother, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, age, country, delivered_at, created_at
		FROM mothers WHERE name = ?`, name)
	return s.scanMother(row)
}

// ActiveQuestions returns the active catalog ordered by order_index.
func (s *SQLiteStore) ActiveQuestions(ctx context.Context, maxOrder int) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, order_index FROM questions
		WHERE is_active = 1 AND order_index <= ?
		ORDER BY order_index`, maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	index := make(map[int64]int)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil
	}

	optRows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.label, o.value, o.order_index
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.is_active = 1 AND q.order_index <= ?
		ORDER BY o.question_id, o.order_index`, maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var o domain.Option
		var questionID int64
		if err := optRows.Scan(&o.ID, &questionID, &o.Label, &o.Value, &o.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan option row: %w", err)
		}
		if i, ok := index[questionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}

	return questions, nil
}

// AnswersFor returns every stored answer for a mother keyed by question id.
func (s *SQLiteStore) AnswersFor(ctx context.Context, motherID int64) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, answer_text FROM answers
		WHERE mother_id = ? ORDER BY question_id`, motherID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[int64]string)
	for rows.Next() {
		var questionID int64
		var text string
		if err := rows.Scan(&questionID, &text); err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		answers[questionID] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return answers, nil
}

// SaveAnswer replaces any previous answer for (mother, question).
func (s *SQLiteStore) SaveAnswer(ctx context.Context, motherID, questionID int64, answer string) (int64, error) {
	id, err := s.saveAnswerOnce(ctx, motherID, questionID, answer)
	if shared.IsSQLiteConflictError(err) {
		// One retry after the busy timeout window.
		id, err = s.saveAnswerOnce(ctx, motherID, questionID, answer)
	}
	return id, err
}

func (s *SQLiteStore) saveAnswerOnce(ctx context.Context, motherID, questionID int64, answer string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin answer tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM answers WHERE mother_id = ? AND question_id = ?`,
		motherID, questionID); err != nil {
		return 0, fmt.Errorf("delete previous answer: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO answers (mother_id, question_id, answer_text, created_at)
		VALUES (?, ?, ?, ?)`,
		motherID, questionID, answer, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("answer insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit answer: %w", err)
	}
	return id, nil
}

// DeleteAnswers removes every answer for a mother.
func (s *SQLiteStore) DeleteAnswers(ctx context.Context, motherID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM answers WHERE mother_id = ?`, motherID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	return nil
}

// AnswerPairs joins answered questions with their text in catalog order.
func (s *SQLiteStore) AnswerPairs(ctx context.Context, motherID int64, maxOrder int) ([]domain.AnswerPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.order_index, q.text, a.answer_text
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.mother_id = ? AND q.is_active = 1 AND q.order_index <= ?
		ORDER BY q.order_index`, motherID, maxOrder)
	if err != nil {
		return nil, fmt.Errorf("query answer pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.AnswerPair
	for rows.Next() {
		var p domain.AnswerPair
		if err := rows.Scan(&p.OrderIndex, &p.Question, &p.Answer); err != nil {
			return nil, fmt.Errorf("scan answer pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer pairs: %w", err)
	}
	return pairs, nil
}

// SeedQuestions inserts the given catalog when the questions table is empty.
func (s *SQLiteStore) SeedQuestions(ctx context.Context, questions []domain.Question) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var seeded int64
	for _, q := range questions {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO questions (text, order_index, is_active) VALUES (?, ?, 1)`,
			q.Text, q.OrderIndex)
		if err != nil {
			return 0, fmt.Errorf("seed question: %w", err)
		}
		questionID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("seed question id: %w", err)
		}
		for _, o := range q.Options {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO question_options (question_id, label, value, order_index)
				VALUES (?, ?, ?, ?)`,
				questionID, o.Label, o.Value, o.OrderIndex); err != nil {
				return 0, fmt.Errorf("seed option: %w", err)
			}
		}
		seeded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return seeded, nil
}
