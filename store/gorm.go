package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flowforge/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Timestamp strings are fixed width so that lexicographic and chronological
// order agree regardless of the column's storage affinity.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// GormStore evaluates query specs against a relational database through gorm.
type GormStore struct {
	db   *gorm.DB
	auth *gormAuth
}

func NewGormStore(db *gorm.DB, jwtSecret []byte) *GormStore {
	return &GormStore{db: db, auth: newGormAuth(db, jwtSecret)}
}

func (s *GormStore) Auth() AuthClient {
	return s.auth
}

func tableModel(table string) any {
	switch table {
	case schema.TableUsers:
		return &schema.User{}
	case schema.TableTeams:
		return &schema.Team{}
	case schema.TableTeamMembers:
		return &schema.TeamMember{}
	case schema.TableWorkflows:
		return &schema.Workflow{}
	case schema.TableWorkflowSteps:
		return &schema.WorkflowStep{}
	case schema.TableConnections:
		return &schema.Connection{}
	case schema.TableForms:
		return &schema.Form{}
	case schema.TableFormFields:
		return &schema.FormField{}
	case schema.TableTasks:
		return &schema.Task{}
	case schema.TableTaskDependencies:
		return &schema.TaskDependency{}
	}
	return nil
}

func applyFilters(tx *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
		case OpIn:
			tx = tx.Where(clause.IN{Column: clause.Column{Name: f.Column}, Values: f.Values})
		default:
			return nil, fmt.Errorf("unsupported filter op '%v'", f.Op)
		}
	}
	return tx, nil
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		return FormatTime(v)
	case []byte:
		return string(v)
	case [16]byte:
		return uuid.UUID(v).String()
	default:
		return value
	}
}

func normalizeRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = normalizeValue(v)
	}
	return row
}

func (s *GormStore) query(ctx context.Context, q Query) (*gorm.DB, error) {
	tx := s.db.WithContext(ctx).Table(q.Table)
	tx, err := applyFilters(tx, q.Filters)
	if err != nil {
		return nil, err
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.OrderBy},
			Desc:   q.Descending,
		})
	}
	return tx, nil
}

func (s *GormStore) Select(ctx context.Context, q Query) ([]Row, error) {
	tx, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	result := tx.Find(&raw)
	if result.Error != nil {
		slog.Error("sql error selecting rows", "table", q.Table, "error", result.Error)
		return nil, schema.ErrStoreAccessFailed
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, normalizeRow(r))
	}
	return rows, nil
}

func (s *GormStore) SelectOne(ctx context.Context, q Query) (Row, error) {
	tx, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	result := tx.Limit(1).Find(&raw)
	if result.Error != nil {
		slog.Error("sql error selecting single row", "table", q.Table, "error", result.Error)
		return nil, schema.ErrStoreAccessFailed
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return normalizeRow(raw[0]), nil
}

func (s *GormStore) Insert(ctx context.Context, table string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()

	inserted := make([]Row, 0, len(rows))
	for i, row := range rows {
		persisted := make(map[string]any, len(row)+3)
		for k, v := range row {
			persisted[k] = v
		}
		if id, ok := persisted["id"].(string); !ok || id == "" {
			persisted["id"] = uuid.NewString()
		}
		// Successive rows of one batch get ascending timestamps so that
		// insertion order survives a created_at sort.
		stamp := FormatTime(now.Add(time.Duration(i) * time.Microsecond))
		if _, ok := persisted["created_at"]; !ok {
			persisted["created_at"] = stamp
		}
		if _, ok := persisted["updated_at"]; !ok && hasUpdatedAt(table) {
			persisted["updated_at"] = stamp
		}

		result := s.db.WithContext(ctx).Table(table).Create(persisted)
		if result.Error != nil {
			slog.Error("sql error inserting row", "table", table, "error", result.Error)
			return nil, schema.ErrStoreAccessFailed
		}
		inserted = append(inserted, normalizeRow(persisted))
	}

	return inserted, nil
}

func hasUpdatedAt(table string) bool {
	switch table {
	case schema.TableTeamMembers, schema.TableTaskDependencies:
		return false
	}
	return true
}

func (s *GormStore) Update(ctx context.Context, table string, changes Row, filters ...Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("refusing unfiltered update on table %v", table)
	}

	tx := s.db.WithContext(ctx).Table(table)
	tx, err := applyFilters(tx, filters)
	if err != nil {
		return err
	}

	result := tx.Updates(map[string]any(changes))
	if result.Error != nil {
		slog.Error("sql error updating rows", "table", table, "error", result.Error)
		return schema.ErrStoreAccessFailed
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("refusing unfiltered delete on table %v", table)
	}

	model := tableModel(table)
	if model == nil {
		return fmt.Errorf("unknown table '%v'", table)
	}

	tx := s.db.WithContext(ctx)
	tx, err := applyFilters(tx, filters)
	if err != nil {
		return err
	}

	result := tx.Delete(model)
	if result.Error != nil {
		slog.Error("sql error deleting rows", "table", table, "error", result.Error)
		return schema.ErrStoreAccessFailed
	}
	return nil
}
