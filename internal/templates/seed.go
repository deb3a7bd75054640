package templates

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed_templates.yaml
var seedFS embed.FS

// seedTemplate is the YAML shape of one shipped default template.
type seedTemplate struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Subject   string   `yaml:"subject"`
	Content   string   `yaml:"content"`
	Variables []string `yaml:"variables"`
}

// loadSeedTemplates parses the embedded defaults.
func loadSeedTemplates() ([]seedTemplate, error) {
	raw, err := seedFS.ReadFile("seed_templates.yaml")
	if err != nil {
		return nil, fmt.Errorf("templates: read seed file: %w", err)
	}
	var seeds []seedTemplate
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("templates: parse seed file: %w", err)
	}
	return seeds, nil
}

// Seed inserts the shipped system templates for every type that has no
// rows yet, active by default. Existing rows are never touched, so admin
// edits survive restarts and redeploys.
func (r *Repository) Seed(ctx context.Context, log *slog.Logger) error {
	seeds, err := loadSeedTemplates()
	if err != nil {
		return err
	}

	for _, seed := range seeds {
		t := Type(seed.Type)
		if !t.Valid() {
			return fmt.Errorf("%w: seed template %q has type %q", ErrInvalidType, seed.Name, seed.Type)
		}

		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM email_templates WHERE type = $1)`, t).Scan(&exists); err != nil {
			return fmt.Errorf("templates: seed existence check: %w", err)
		}
		if exists {
			continue
		}

		_, err := r.pool.Exec(ctx,
			`INSERT INTO email_templates (id, name, type, subject, content, variables, is_active, is_system)
			 VALUES ($1, $2, $3, $4, $5, $6, true, true)`,
			uuid.New(), seed.Name, t, seed.Subject, seed.Content, seed.Variables)
		if err != nil {
			return fmt.Errorf("templates: seed insert %q: %w", seed.Name, err)
		}
		log.InfoContext(ctx, "seeded default email template",
			slog.String("type", seed.Type),
			slog.String("name", seed.Name),
		)
	}
	return nil
}
