package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PGStore reads and writes the corpus in PostgreSQL.
type PGStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPGStore creates a PGStore with a pgx connection pool.
func NewPGStore(ctx context.Context, dsn string, logger *zap.Logger) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &PGStore{db: pool, logger: logger}, nil
}

// Migrate reads and executes all .up.sql files from the migrations directory
// in name order.
func (s *PGStore) Migrate(ctx context.Context, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		if _, err := s.db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		s.logger.Info("Migration applied", zap.String("file", f))
	}
	return nil
}

// Load reads the whole corpus in insertion order.
func (s *PGStore) Load(ctx context.Context) (*Corpus, error) {
	c := &Corpus{}

	rows, err := s.db.Query(ctx, `SELECT key, file_name, content FROM corpus_models ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query models: %w", err)
	}
	index := map[string]int{}
	for rows.Next() {
		var m ModelEmbeddings
		if err := rows.Scan(&m.Key, &m.FileName, &m.Content); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan model: %w", err)
		}
		index[m.Key] = len(c.Models)
		c.Models = append(c.Models, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}

	err = s.scanEmbeddings(ctx, `SELECT model_key, provider, embedding FROM corpus_model_embeddings`, func(key, p string, vec []float32) {
		if i, ok := index[key]; ok {
			if c.Models[i].Embeddings == nil {
				c.Models[i].Embeddings = Embeddings{}
			}
			c.Models[i].Embeddings[p] = vec
		}
	})
	if err != nil {
		return nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT name, grammar, sample, model FROM corpus_templates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	index = map[string]int{}
	for rows.Next() {
		var t TemplateEmbeddings
		if err := rows.Scan(&t.Name, &t.Grammar, &t.Sample, &t.Model); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan template: %w", err)
		}
		index[t.Name] = len(c.Templates)
		c.Templates = append(c.Templates, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	err = s.scanEmbeddings(ctx, `SELECT template_name, provider, embedding FROM corpus_template_embeddings`, func(key, p string, vec []float32) {
		if i, ok := index[key]; ok {
			if c.Templates[i].Embeddings == nil {
				c.Templates[i].Embeddings = Embeddings{}
			}
			c.Templates[i].Embeddings[p] = vec
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("corpus loaded from postgres",
		zap.Int("models", len(c.Models)),
		zap.Int("templates", len(c.Templates)))
	return c, nil
}

func (s *PGStore) scanEmbeddings(ctx context.Context, query string, fn func(key, providerID string, vec []float32)) error {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, p string
		var vec []float32
		if err := rows.Scan(&key, &p, &vec); err != nil {
			return fmt.Errorf("scan embedding: %w", err)
		}
		fn(key, p, vec)
	}
	return rows.Err()
}

// Import writes c into the store, replacing entries with the same key.
// Used to seed the database from a JSON corpus directory.
func (s *PGStore) Import(ctx context.Context, c *Corpus) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, m := range c.Models {
		batch.Queue(`INSERT INTO corpus_models (key, file_name, content) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET file_name = EXCLUDED.file_name, content = EXCLUDED.content`,
			m.Key, m.FileName, m.Content)
		for p, vec := range m.Embeddings {
			batch.Queue(`INSERT INTO corpus_model_embeddings (model_key, provider, embedding) VALUES ($1, $2, $3)
				ON CONFLICT (model_key, provider) DO UPDATE SET embedding = EXCLUDED.embedding`,
				m.Key, p, vec)
		}
	}
	for _, t := range c.Templates {
		batch.Queue(`INSERT INTO corpus_templates (name, grammar, sample, model) VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET grammar = EXCLUDED.grammar, sample = EXCLUDED.sample, model = EXCLUDED.model`,
			t.Name, t.Grammar, t.Sample, t.Model)
		for p, vec := range t.Embeddings {
			batch.Queue(`INSERT INTO corpus_template_embeddings (template_name, provider, embedding) VALUES ($1, $2, $3)
				ON CONFLICT (template_name, provider) DO UPDATE SET embedding = EXCLUDED.embedding`,
				t.Name, p, vec)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("import corpus: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.logger.Info("corpus imported",
		zap.Int("models", len(c.Models)),
		zap.Int("templates", len(c.Templates)))
	return nil
}

// Close shuts down the connection pool.
func (s *PGStore) Close() {
	s.db.Close()
}
