package sqlite

const schema = `
-- Projects
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE CHECK(length(name) <= 200),
    status TEXT NOT NULL DEFAULT 'active',
    created_at TEXT NOT NULL
);

-- Team members
CREATE TABLE IF NOT EXISTS team_members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    username TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'developer',
    is_active INTEGER NOT NULL DEFAULT 1,
    joined_at TEXT NOT NULL,
    UNIQUE(project_id, username),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_members_project ON team_members(project_id);

-- Standup sessions: at most one per (member, project, date)
CREATE TABLE IF NOT EXISTS standup_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    member_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    yesterday_work TEXT NOT NULL DEFAULT '',
    today_plan TEXT NOT NULL DEFAULT '',
    blockers TEXT NOT NULL DEFAULT '',
    sentiment_score REAL,
    sentiment_label TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(member_id, project_id, date),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES team_members(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_project_date ON standup_sessions(project_id, date);
CREATE INDEX IF NOT EXISTS idx_sessions_member_date ON standup_sessions(member_id, date);

-- Work item references
CREATE TABLE IF NOT EXISTS work_item_refs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    item_type TEXT NOT NULL,
    item_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active',
    created_at TEXT NOT NULL,
    UNIQUE(session_id, item_type, item_id),
    FOREIGN KEY (session_id) REFERENCES standup_sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_work_items_session ON work_item_refs(session_id);

-- Trend points: one per (project, metric_type, date), recomputed via upsert
CREATE TABLE IF NOT EXISTS trend_points (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    metric_type TEXT NOT NULL,
    date TEXT NOT NULL,
    current_value REAL NOT NULL,
    previous_value REAL,
    change_percentage REAL,
    trend_direction TEXT NOT NULL DEFAULT 'stable',
    rolling_average_7d REAL,
    rolling_average_30d REAL,
    anomaly_detected INTEGER NOT NULL DEFAULT 0,
    alert_threshold_breached INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(project_id, metric_type, date),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_trends_key ON trend_points(project_id, metric_type, date);

-- Health alerts
CREATE TABLE IF NOT EXISTS health_alerts (
    id TEXT PRIMARY KEY,
    project_id INTEGER NOT NULL,
    member_id INTEGER,
    alert_type TEXT NOT NULL,
    severity TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    title TEXT NOT NULL CHECK(length(title) <= 200),
    description TEXT NOT NULL DEFAULT '',
    context_data TEXT NOT NULL DEFAULT '{}',
    confidence_score REAL NOT NULL CHECK(confidence_score >= 0.0 AND confidence_score <= 1.0),
    created_at TEXT NOT NULL,
    acknowledged_at TEXT,
    acknowledged_by TEXT NOT NULL DEFAULT '',
    resolved_at TEXT,
    resolved_by TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES team_members(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_project_type ON health_alerts(project_id, alert_type, status);
CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON health_alerts(created_at);
`
