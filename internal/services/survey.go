package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixroth/cableplan/pkg/models"
)

// SurveySummary is the lightweight list representation of a survey. The
// full document (buildings, connections, equipment) is only loaded by Get.
type SurveySummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BuildingsCount int       `json:"buildings_count"`
	EquipmentCount int       `json:"equipment_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SurveyFilter controls which surveys List returns.
type SurveyFilter struct {
	Search string // Substring match on name.
}

// SurveyRepository provides CRUD access to survey documents. A survey is
// stored as a single JSON snapshot; mutations go through Update with the
// whole document.
type SurveyRepository interface {
	// Get returns the full survey document by ID.
	Get(ctx context.Context, id string) (*models.Survey, error)

	// List returns filtered, paginated survey summaries.
	List(ctx context.Context, filter SurveyFilter, opts ListOptions) (*ListResult[SurveySummary], error)

	// Create inserts a new survey. If survey.ID is empty, a UUID is generated.
	Create(ctx context.Context, survey *models.Survey) error

	// Update replaces the stored document with the given one.
	Update(ctx context.Context, survey *models.Survey) error

	// Delete removes a survey by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ SurveyRepository = (*SQLiteSurveyRepository)(nil)

// SQLiteSurveyRepository implements SurveyRepository on the survey_documents
// table (created by the survey plugin's migrations).
type SQLiteSurveyRepository struct {
	db *sql.DB
}

// NewSQLiteSurveyRepository creates a SurveyRepository.
func NewSQLiteSurveyRepository(db *sql.DB) *SQLiteSurveyRepository {
	return &SQLiteSurveyRepository{db: db}
}

func (r *SQLiteSurveyRepository) Get(ctx context.Context, id string) (*models.Survey, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM survey_documents WHERE id = ?`, id,
	).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get survey %q: %w", id, err)
	}

	var s models.Survey
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode survey %q: %w", id, err)
	}

	// Documents written by older builds may carry duplicated ledger rows;
	// collapse them on the way in so every caller sees a clean ledger.
	s.Equipment = models.DeduplicateEquipment(s.Equipment)
	return &s, nil
}

func (r *SQLiteSurveyRepository) List(ctx context.Context, filter SurveyFilter, opts ListOptions) (*ListResult[SurveySummary], error) {
	opts = normalizeListOptions(opts)

	sortCol := "updated_at"
	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	if opts.SortBy != "" {
		if col, ok := allowedSorts[opts.SortBy]; ok {
			sortCol = col
		}
	}

	where := "1=1"
	var args []any
	if filter.Search != "" {
		where += " AND name LIKE ?"
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM survey_documents WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count surveys: %w", err)
	}

	orderDir := "DESC"
	if opts.SortOrder == "asc" {
		orderDir = "ASC"
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	//nolint:gosec // where uses parameterized placeholders; sortCol is validated above
	query := fmt.Sprintf(
		`SELECT id, name, buildings_count, equipment_count, created_at, updated_at
		 FROM survey_documents WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		where, sortCol, orderDir,
	)

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var summaries []SurveySummary
	for rows.Next() {
		var s SurveySummary
		if err := rows.Scan(&s.ID, &s.Name, &s.BuildingsCount, &s.EquipmentCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan survey row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surveys: %w", err)
	}
	if summaries == nil {
		summaries = []SurveySummary{}
	}

	return &ListResult[SurveySummary]{Items: summaries, Total: total}, nil
}

func (r *SQLiteSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	if survey.ID == "" {
		survey.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = now
	}
	survey.UpdatedAt = now

	data, err := json.Marshal(survey)
	if err != nil {
		return fmt.Errorf("encode survey: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO survey_documents (id, name, data, buildings_count, equipment_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		survey.ID, survey.Name, string(data),
		len(survey.Buildings), len(survey.Equipment),
		survey.CreatedAt, survey.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	return nil
}

func (r *SQLiteSurveyRepository) Update(ctx context.Context, survey *models.Survey) error {
	survey.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(survey)
	if err != nil {
		return fmt.Errorf("encode survey: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE survey_documents
		SET name = ?, data = ?, buildings_count = ?, equipment_count = ?, updated_at = ?
		WHERE id = ?`,
		survey.Name, string(data),
		len(survey.Buildings), len(survey.Equipment),
		survey.UpdatedAt, survey.ID,
	)
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteSurveyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM survey_documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
