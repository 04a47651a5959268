package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	"triviaapi/internal/models"
	"triviaapi/internal/observability"
	contextutils "triviaapi/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

//go:embed seed/trivia.yaml
var defaultSeed []byte

// SeedQuestion is a question row as written in a seed file. An id of 0 lets the database assign one.
type SeedQuestion struct {
	ID         int    `yaml:"id"`
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	Category   int    `yaml:"category"`
	Difficulty int    `yaml:"difficulty"`
}

// SeedData is the content of a seed file
type SeedData struct {
	Categories []models.Category `yaml:"categories"`
	Questions  []SeedQuestion    `yaml:"questions"`
}

// ParseSeed decodes seed YAML
func ParseSeed(data []byte) (*SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "failed to parse seed data: %w", err)
	}
	for i, c := range seed.Categories {
		if c.Type == "" {
			return nil, contextutils.NewAppError(contextutils.ErrorCodeValidationFailed, contextutils.SeverityWarn,
				"invalid seed data", fmt.Sprintf("category at index %d has no type", i))
		}
	}
	return &seed, nil
}

// LoadSeedFile reads and decodes a seed file
func LoadSeedFile(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// DefaultSeed returns the bundled six categories and nineteen questions
func DefaultSeed() *SeedData {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(err)
	}
	return seed
}

// Seed upserts the categories and questions of seed in one transaction and moves the id
// sequences past the highest id so later inserts do not collide.
func (dm *Manager) Seed(ctx context.Context, db *sql.DB, seed *SeedData) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "Seed",
		attribute.Int("seed.categories", len(seed.Categories)),
		attribute.Int("seed.questions", len(seed.Questions)),
	)
	defer observability.FinishSpan(span, &err)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return contextutils.WrapError(err, "failed to begin seed transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				dm.logger.Error(ctx, "Failed to roll back seed transaction", rbErr)
			}
		}
	}()

	for _, c := range seed.Categories {
		if c.ID > 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO categories (id, type) VALUES ($1, $2)
				 ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type`, c.ID, c.Type)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO categories (type) VALUES ($1)`, c.Type)
		}
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to seed category %q", c.Type)
		}
	}

	for _, q := range seed.Questions {
		if q.ID > 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO questions (id, question, answer, category, difficulty) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO UPDATE SET question = EXCLUDED.question, answer = EXCLUDED.answer,
				 category = EXCLUDED.category, difficulty = EXCLUDED.difficulty`,
				q.ID, q.Question, q.Answer, q.Category, q.Difficulty)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO questions (question, answer, category, difficulty) VALUES ($1, $2, $3, $4)`,
				q.Question, q.Answer, q.Category, q.Difficulty)
		}
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to seed question %q", q.Question)
		}
	}

	for _, table := range []string{"categories", "questions"} {
		_, err = tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('`+table+`', 'id'),
			COALESCE((SELECT MAX(id) FROM `+table+`), 0) + 1, false)`)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to advance %s id sequence", table)
		}
	}

	if err = tx.Commit(); err != nil {
		return contextutils.WrapError(err, "failed to commit seed transaction")
	}

	dm.logger.Info(ctx, "Seed data loaded", map[string]interface{}{
		"categories": len(seed.Categories),
		"questions":  len(seed.Questions),
	})
	return nil
}
