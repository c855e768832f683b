package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

// CreateSession inserts a standup session and fills in its ID. The
// (member, project, date) uniqueness invariant is enforced by the schema.
func (s *SQLiteStorage) CreateSession(ctx context.Context, sess *types.StandupSession) error {
	if sess.ProjectID == 0 || sess.MemberID == 0 {
		return fmt.Errorf("session requires a project and member")
	}
	if sess.Date.IsZero() {
		return fmt.Errorf("session requires a date")
	}
	if sess.Status == "" {
		sess.Status = types.SessionPending
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO standup_sessions
		 (project_id, member_id, date, status, yesterday_work, today_plan, blockers,
		  sentiment_score, sentiment_label, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ProjectID, sess.MemberID, fmtDate(sess.Date), sess.Status,
		sess.YesterdayWork, sess.TodayPlan, sess.Blockers,
		nullFloat(sess.SentimentScore), sess.SentimentLabel,
		fmtTime(sess.CreatedAt), fmtTime(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session (project=%d, member=%d, date=%s): %w",
			sess.ProjectID, sess.MemberID, fmtDate(sess.Date), err)
	}
	sess.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}
	return nil
}

// ListSessions returns sessions matching the filter, ordered by date
// ascending. WorkItemCount is populated from the work_item_refs table.
func (s *SQLiteStorage) ListSessions(ctx context.Context, filter types.SessionFilter) ([]*types.StandupSession, error) {
	query := `
		SELECT ss.id, ss.project_id, ss.member_id, ss.date, ss.status,
		       ss.yesterday_work, ss.today_plan, ss.blockers,
		       ss.sentiment_score, ss.sentiment_label,
		       (SELECT COUNT(*) FROM work_item_refs w WHERE w.session_id = ss.id),
		       ss.created_at, ss.updated_at
		FROM standup_sessions ss
		WHERE 1=1
	`
	args := []any{}

	if filter.ProjectID != 0 {
		query += " AND ss.project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.MemberID != 0 {
		query += " AND ss.member_id = ?"
		args = append(args, filter.MemberID)
	}
	if !filter.Start.IsZero() {
		query += " AND ss.date >= ?"
		args = append(args, fmtDate(filter.Start))
	}
	if !filter.End.IsZero() {
		query += " AND ss.date <= ?"
		args = append(args, fmtDate(filter.End))
	}
	if filter.Status != "" {
		query += " AND ss.status = ?"
		args = append(args, filter.Status)
	}
	if filter.RequireSentiment {
		query += " AND ss.sentiment_score IS NOT NULL"
	}

	query += " ORDER BY ss.date ASC, ss.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.StandupSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(rows *sql.Rows) (*types.StandupSession, error) {
	var sess types.StandupSession
	var date, createdAt, updatedAt string
	var score sql.NullFloat64
	if err := rows.Scan(
		&sess.ID, &sess.ProjectID, &sess.MemberID, &date, &sess.Status,
		&sess.YesterdayWork, &sess.TodayPlan, &sess.Blockers,
		&score, &sess.SentimentLabel, &sess.WorkItemCount,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	var err error
	if sess.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sess.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	sess.SentimentScore = floatPtr(score)
	return &sess, nil
}

// LastCompletedSessionDate returns the most recent date on which the member
// completed a standup for the project. The bool is false when the member has
// never completed one.
func (s *SQLiteStorage) LastCompletedSessionDate(ctx context.Context, projectID, memberID int64) (time.Time, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM standup_sessions
		 WHERE project_id = ? AND member_id = ? AND status = ?`,
		projectID, memberID, types.SessionCompleted,
	).Scan(&date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last session date: %w", err)
	}
	if !date.Valid || date.String == "" {
		return time.Time{}, false, nil
	}
	t, err := parseDate(date.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// AddWorkItem inserts a work item reference and fills in its ID.
func (s *SQLiteStorage) AddWorkItem(ctx context.Context, w *types.WorkItemReference) error {
	if w.SessionID == 0 {
		return fmt.Errorf("work item requires a session")
	}
	if w.Status == "" {
		w.Status = types.WorkItemActive
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO work_item_refs (session_id, item_type, item_id, title, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.SessionID, w.ItemType, w.ItemID, w.Title, w.Status, fmtTime(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add work item %s/%s: %w", w.ItemType, w.ItemID, err)
	}
	w.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read work item id: %w", err)
	}
	return nil
}

// ListWorkItems returns work item references attached to the project's
// sessions within the inclusive date range.
func (s *SQLiteStorage) ListWorkItems(ctx context.Context, projectID int64, start, end time.Time) ([]*types.WorkItemReference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.id, w.session_id, w.item_type, w.item_id, w.title, w.status, w.created_at
		 FROM work_item_refs w
		 JOIN standup_sessions ss ON ss.id = w.session_id
		 WHERE ss.project_id = ? AND ss.date >= ? AND ss.date <= ?
		 ORDER BY ss.date ASC, w.id ASC`,
		projectID, fmtDate(start), fmtDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	var items []*types.WorkItemReference
	for rows.Next() {
		var w types.WorkItemReference
		var createdAt string
		if err := rows.Scan(&w.ID, &w.SessionID, &w.ItemType, &w.ItemID, &w.Title, &w.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		if w.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, &w)
	}
	return items, rows.Err()
}
