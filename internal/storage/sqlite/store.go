package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
	"github.com/samijaber1/alcometer/internal/storage"
)

// Store implements HistoryStorage using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite storage with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// StoreEstimation persists an estimation record
func (s *Store) StoreEstimation(record *storage.Record) error {
	reasons := record.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}

	var bacValue sql.NullFloat64
	if record.BAC != nil {
		bacValue = sql.NullFloat64{Float64: *record.BAC, Valid: true}
	}

	query := `
		INSERT INTO estimations (
			id, source, sex, weight_kg, drink_count, elapsed_hours,
			bac, display, outcome, level, reasons_json, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		record.ID,
		string(record.Source),
		string(record.Input.Sex),
		record.Input.WeightKg,
		record.Input.DrinkCount,
		record.Input.ElapsedHours,
		bacValue,
		record.Display,
		string(record.Outcome),
		string(record.Level),
		string(reasonsJSON),
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store estimation: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT id, source, sex, weight_kg, drink_count, elapsed_hours,
	       bac, display, outcome, level, reasons_json, created_at
	FROM estimations
`

// GetEstimation retrieves a single record by ID
func (s *Store) GetEstimation(id string) (*storage.Record, error) {
	row := s.db.QueryRow(selectColumns+" WHERE id = ?", id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get estimation: %w", err)
	}

	return record, nil
}

// QueryHistory retrieves records with optional filtering
func (s *Store) QueryHistory(filter storage.HistoryFilter) ([]storage.Record, error) {
	query := selectColumns + " WHERE 1=1"
	args := []interface{}{}

	if filter.Sex != "" {
		query += " AND sex = ?"
		args = append(args, string(filter.Sex))
	}

	if filter.Level != "" {
		query += " AND level = ?"
		args = append(args, string(filter.Level))
	}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}

	if filter.StartTime != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.StartTime.UTC())
	}

	if filter.EndTime != nil {
		query += " AND created_at <= ?"
		args = append(args, filter.EndTime.UTC())
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, filter.EffectiveLimit())

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*storage.Record, error) {
	var (
		record                    storage.Record
		source, sex, outcome, lvl string
		bacValue                  sql.NullFloat64
		reasonsJSON               string
	)

	err := row.Scan(
		&record.ID,
		&source,
		&sex,
		&record.Input.WeightKg,
		&record.Input.DrinkCount,
		&record.Input.ElapsedHours,
		&bacValue,
		&record.Display,
		&outcome,
		&lvl,
		&reasonsJSON,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Source = storage.Source(source)
	record.Input.Sex = bac.Sex(sex)
	record.Outcome = bac.Outcome(outcome)
	record.Level = level.Level(lvl)
	if bacValue.Valid {
		v := bacValue.Float64
		record.BAC = &v
	}

	if err := json.Unmarshal([]byte(reasonsJSON), &record.Reasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
	}

	return &record, nil
}
