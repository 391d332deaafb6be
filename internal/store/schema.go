package store

// Schema contains the complete DDL for the moose gallery tables.
//
// The FTS5 index over names is kept in lock-step with the primary table by
// the AFTER INSERT / AFTER DELETE triggers, so index maintenance commits in
// the same transaction as the row mutation and readers never observe a
// record without its search entry (or the reverse). There is no UPDATE
// trigger: names are immutable and the only updatable column is the PNG
// blob, which the index does not cover.
const Schema = `
-- Moose records: one row per stored artwork
CREATE TABLE IF NOT EXISTS moose (
    name     TEXT PRIMARY KEY,
    created  INTEGER NOT NULL,
    image    TEXT NOT NULL,
    shade    TEXT NOT NULL DEFAULT '',
    hd       INTEGER NOT NULL DEFAULT 0,
    shaded   INTEGER NOT NULL DEFAULT 0,
    extended INTEGER NOT NULL DEFAULT 0,
    png      BLOB
);
CREATE INDEX IF NOT EXISTS idx_moose_created ON moose(created);

-- FTS5 full-text index over names
CREATE VIRTUAL TABLE IF NOT EXISTS moose_fts USING fts5(
    name,
    content='moose',
    content_rowid='rowid',
    tokenize='unicode61'
);

-- Triggers to keep FTS5 in sync with the moose table
CREATE TRIGGER IF NOT EXISTS moose_ai AFTER INSERT ON moose BEGIN
    INSERT INTO moose_fts(rowid, name) VALUES (new.rowid, new.name);
END;
CREATE TRIGGER IF NOT EXISTS moose_ad AFTER DELETE ON moose BEGIN
    INSERT INTO moose_fts(moose_fts, rowid, name) VALUES ('delete', old.rowid, old.name);
END;
`
