package sqlite

const schema = `
-- Profile sections table: one row per (user, tab), payload as canonical JSON
CREATE TABLE IF NOT EXISTS profile_sections (
    user_id TEXT NOT NULL,
    section TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, section)
);

CREATE INDEX IF NOT EXISTS idx_profile_sections_user ON profile_sections(user_id);
CREATE INDEX IF NOT EXISTS idx_profile_sections_updated ON profile_sections(updated_at);

-- Form events table: diagnostic trail from trackers, sessions and the pipeline
CREATE TABLE IF NOT EXISTS form_events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    timestamp DATETIME NOT NULL,
    user_id TEXT NOT NULL,
    section TEXT NOT NULL DEFAULT '',
    label TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL DEFAULT 'info',
    message TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_form_events_user ON form_events(user_id);
CREATE INDEX IF NOT EXISTS idx_form_events_timestamp ON form_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_form_events_type ON form_events(type);
CREATE INDEX IF NOT EXISTS idx_form_events_section ON form_events(section);

-- Config table for storage-level metadata
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
