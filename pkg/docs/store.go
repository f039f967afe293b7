package docs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const applicationsSchema = `
CREATE TABLE IF NOT EXISTS applications (
	id            TEXT PRIMARY KEY,
	citizen_email TEXT NOT NULL DEFAULT '',
	scheme_id     TEXT NOT NULL,
	scheme_name   TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT 'general',
	status        TEXT NOT NULL DEFAULT 'started',
	docs_json     TEXT NOT NULL DEFAULT '{}',
	submitted_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_scheme ON applications(scheme_id);
`

// Application is one saved scheme application.
type Application struct {
	ID           string                 `json:"application_id"`
	CitizenEmail string                 `json:"citizen_email,omitempty"`
	SchemeID     string                 `json:"scheme_id"`
	SchemeName   string                 `json:"scheme_name"`
	Category     string                 `json:"category"`
	Status       string                 `json:"status"`
	Docs         map[string]interface{} `json:"docs,omitempty"`
	SubmittedAt  string                 `json:"submitted_at"`
}

// Applications persists submitted applications to sqlite.
type Applications struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenApplications opens (creating if needed) the application store at path.
func OpenApplications(path string) (*Applications, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open application store: %w", err)
	}
	if _, err := db.Exec(applicationsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init application schema: %w", err)
	}
	return &Applications{db: db}, nil
}

// Save records a new application with a generated id and status "started".
func (a *Applications) Save(app Application) (Application, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	app.ID = uuid.NewString()
	app.Status = "started"
	app.SubmittedAt = time.Now().UTC().Format(time.RFC3339)
	if app.Category == "" {
		app.Category = "general"
	}
	docsJSON := "{}"
	if len(app.Docs) > 0 {
		raw, err := json.Marshal(app.Docs)
		if err != nil {
			return Application{}, fmt.Errorf("failed to encode docs: %w", err)
		}
		docsJSON = string(raw)
	}

	_, err := a.db.Exec(
		`INSERT INTO applications (id, citizen_email, scheme_id, scheme_name, category, status, docs_json, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.CitizenEmail, app.SchemeID, app.SchemeName, app.Category, app.Status, docsJSON, app.SubmittedAt,
	)
	if err != nil {
		return Application{}, fmt.Errorf("failed to save application: %w", err)
	}
	return app, nil
}

// Get returns a saved application by id.
func (a *Applications) Get(id string) (Application, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var app Application
	var docsJSON string
	err := a.db.QueryRow(
		`SELECT id, citizen_email, scheme_id, scheme_name, category, status, docs_json, submitted_at
		 FROM applications WHERE id = ?`, id,
	).Scan(&app.ID, &app.CitizenEmail, &app.SchemeID, &app.SchemeName, &app.Category, &app.Status, &docsJSON, &app.SubmittedAt)
	if err != nil {
		return Application{}, err
	}
	if docsJSON != "" && docsJSON != "{}" {
		_ = json.Unmarshal([]byte(docsJSON), &app.Docs)
	}
	return app, nil
}

// Close releases the underlying database.
func (a *Applications) Close() error {
	return a.db.Close()
}
