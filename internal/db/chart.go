package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ganttkit/ganttkit/internal/dates"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/task"
)

// Chart is a persisted chart: identity plus the full task and dependency
// lists.
type Chart struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	Tasks        []*task.Task       `json:"tasks"`
	Dependencies []*task.Dependency `json:"dependencies"`
}

// ChartSummary is the listing row: identity without the task payload.
type ChartSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaskCount int       `json:"taskCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveChart upserts a chart and replaces its task and dependency rows in one
// transaction. A chart with an empty ID is assigned one.
func (s *Store) SaveChart(ctx context.Context, c *Chart) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	tx, err := s.drv.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(ctx,
		fmt.Sprintf("DELETE FROM charts WHERE id = %s", s.drv.Placeholder(1)), c.ID); err != nil {
		return fmt.Errorf("clear chart %s: %w", c.ID, err)
	}
	if _, err := tx.Exec(ctx,
		fmt.Sprintf("INSERT INTO charts (id, name, created_at, updated_at) VALUES (%s)", s.ph(4)),
		c.ID, c.Name, c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert chart %s: %w", c.ID, err)
	}

	insertTask := fmt.Sprintf(`INSERT INTO tasks
		(chart_id, id, name, start_date, end_date, progress, type, parent_id,
		 collapsed, color, draggable, resizable, readonly, metadata)
		VALUES (%s)`, s.ph(14))
	for _, t := range c.Tasks {
		meta, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for task %d: %w", t.ID, err)
		}
		if _, err := tx.Exec(ctx, insertTask,
			c.ID, t.ID, t.Name, t.Start.String(), t.End.String(), t.Progress,
			string(t.Type), t.ParentID, t.Collapsed, t.Color,
			t.Draggable, t.Resizable, t.Readonly, string(meta)); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	insertDep := fmt.Sprintf(`INSERT INTO dependencies
		(chart_id, from_id, to_id, type, lag) VALUES (%s)`, s.ph(5))
	for _, d := range c.Dependencies {
		if _, err := tx.Exec(ctx, insertDep,
			c.ID, d.From, d.To, string(d.Type), d.Lag); err != nil {
			return fmt.Errorf("insert dependency %d->%d: %w", d.From, d.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chart %s: %w", c.ID, err)
	}
	s.logger.Debug("chart saved", "chart", c.ID, "tasks", len(c.Tasks), "deps", len(c.Dependencies))
	return nil
}

// LoadChart reads a chart by ID. Returns CHART_NOT_FOUND for unknown IDs.
func (s *Store) LoadChart(ctx context.Context, id string) (*Chart, error) {
	c := &Chart{ID: id}

	var created, updated string
	err := s.drv.QueryRow(ctx,
		fmt.Sprintf("SELECT name, created_at, updated_at FROM charts WHERE id = %s", s.drv.Placeholder(1)),
		id).Scan(&c.Name, &created, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrChartNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load chart %s: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, created)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	if c.Tasks, err = s.loadTasks(ctx, id); err != nil {
		return nil, err
	}
	if c.Dependencies, err = s.loadDependencies(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) loadTasks(ctx context.Context, chartID string) ([]*task.Task, error) {
	rows, err := s.drv.Query(ctx, fmt.Sprintf(`SELECT
		id, name, start_date, end_date, progress, type, parent_id,
		collapsed, color, draggable, resizable, readonly, metadata
		FROM tasks WHERE chart_id = %s ORDER BY id`, s.drv.Placeholder(1)), chartID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}
		var start, end, typ, meta string
		if err := rows.Scan(&t.ID, &t.Name, &start, &end, &t.Progress, &typ,
			&t.ParentID, &t.Collapsed, &t.Color, &t.Draggable, &t.Resizable,
			&t.Readonly, &meta); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Type = task.Type(typ)
		if t.Start, err = dates.Parse(start); err != nil {
			return nil, fmt.Errorf("task %d start: %w", t.ID, err)
		}
		if t.End, err = dates.Parse(end); err != nil {
			return nil, fmt.Errorf("task %d end: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
			return nil, fmt.Errorf("task %d metadata: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) loadDependencies(ctx context.Context, chartID string) ([]*task.Dependency, error) {
	rows, err := s.drv.Query(ctx, fmt.Sprintf(`SELECT from_id, to_id, type, lag
		FROM dependencies WHERE chart_id = %s ORDER BY from_id, to_id`, s.drv.Placeholder(1)), chartID)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	deps := []*task.Dependency{}
	for rows.Next() {
		d := &task.Dependency{}
		var typ string
		if err := rows.Scan(&d.From, &d.To, &typ, &d.Lag); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		d.Type = task.DependencyType(typ)
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

// ListCharts returns summaries of all charts, most recently updated first.
func (s *Store) ListCharts(ctx context.Context) ([]ChartSummary, error) {
	rows, err := s.drv.Query(ctx, `SELECT c.id, c.name, c.updated_at,
		(SELECT COUNT(*) FROM tasks t WHERE t.chart_id = c.id)
		FROM charts c ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []ChartSummary{}
	for rows.Next() {
		var cs ChartSummary
		var updated string
		if err := rows.Scan(&cs.ID, &cs.Name, &updated, &cs.TaskCount); err != nil {
			return nil, fmt.Errorf("scan chart summary: %w", err)
		}
		cs.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, cs)
	}
	return out, rows.Err()
}

// DeleteChart removes a chart and, through cascade, its tasks and
// dependencies. Returns CHART_NOT_FOUND for unknown IDs.
func (s *Store) DeleteChart(ctx context.Context, id string) error {
	res, err := s.drv.Exec(ctx,
		fmt.Sprintf("DELETE FROM charts WHERE id = %s", s.drv.Placeholder(1)), id)
	if err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrChartNotFound(id)
	}
	return nil
}
