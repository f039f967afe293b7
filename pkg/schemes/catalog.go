package schemes

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Catalog is the sqlite-backed scheme store. Reads prefer the store and fall
// back to the static set so a cold or broken store never fails a caller:
// availability over freshness.
type Catalog struct {
	db *sql.DB
	mu sync.RWMutex
}

func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS schemes (
		id TEXT PRIMARY KEY,
		name TEXT,
		category TEXT,
		description TEXT,
		benefits TEXT,
		eligibility_text TEXT,
		rules_json TEXT,
		ministry TEXT,
		official_url TEXT,
		is_active INTEGER DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_schemes_category ON schemes(category);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert inserts or replaces a scheme record.
func (c *Catalog) Upsert(s Scheme) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rules, err := json.Marshal(s.Rules)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO schemes (id, name, category, description, benefits, eligibility_text, rules_json, ministry, official_url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		s.ID, s.Name, s.Category, s.Description, s.Benefits, s.EligibilityText, string(rules), s.Ministry, s.OfficialURL)
	return err
}

// Active returns all active schemes in insertion order.
func (c *Catalog) Active() ([]Scheme, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(`
		SELECT id, name, category, description, benefits, eligibility_text, rules_json, ministry, official_url
		FROM schemes WHERE is_active = 1 ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Scheme
	for rows.Next() {
		var s Scheme
		var rulesJSON string
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Description, &s.Benefits, &s.EligibilityText, &rulesJSON, &s.Ministry, &s.OfficialURL); err != nil {
			continue
		}
		if rulesJSON != "" {
			_ = json.Unmarshal([]byte(rulesJSON), &s.Rules)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SeedIfEmpty loads the given schemes into an empty store. A store that
// already holds schemes is left untouched.
func (c *Catalog) SeedIfEmpty(seed []Scheme) error {
	existing, err := c.Active()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, s := range seed {
		if err := c.Upsert(s); err != nil {
			return fmt.Errorf("failed to seed scheme %s: %w", s.ID, err)
		}
	}
	return nil
}

// ActiveOrFallback returns the stored catalog, or the static fallback set
// when the store is empty or erroring.
func (c *Catalog) ActiveOrFallback() []Scheme {
	if c == nil {
		return FallbackSchemes()
	}
	stored, err := c.Active()
	if err != nil {
		fmt.Printf("[Catalog] Store unavailable, using fallback: %v\n", err)
		return FallbackSchemes()
	}
	if len(stored) == 0 {
		return FallbackSchemes()
	}
	return stored
}
