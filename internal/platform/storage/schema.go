// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

// sqliteSchema is the embedded-database schema, applied idempotently on every
// open. The PostgreSQL equivalent lives under data/migrations and is applied
// by the migration runner instead.
//
// All timestamps are stored as Unix epoch seconds. Booleans are stored as
// 0/1 integers.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL,
    username        TEXT,
    display_name    TEXT NOT NULL DEFAULT '',
    bio             TEXT NOT NULL DEFAULT '',
    avatar_url      TEXT,
    social_links    TEXT,
    role            TEXT NOT NULL CHECK (role IN ('instructor', 'student')),
    password        TEXT NOT NULL,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    UNIQUE (email, role)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_username
    ON profiles (username) WHERE username IS NOT NULL;

CREATE TABLE IF NOT EXISTS sessions (
    token           TEXT PRIMARY KEY,
    profile_id      TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    expires_at      INTEGER NOT NULL,
    created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_profile
    ON sessions (profile_id);

CREATE TABLE IF NOT EXISTS password_resets (
    token           TEXT PRIMARY KEY,
    profile_id      TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    used            INTEGER NOT NULL DEFAULT 0,
    expires_at      INTEGER NOT NULL,
    created_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS spaces (
    id                      TEXT PRIMARY KEY,
    instructor_id           TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    name                    TEXT NOT NULL,
    slug                    TEXT NOT NULL UNIQUE,
    description             TEXT NOT NULL DEFAULT '',
    logo_url                TEXT,
    landing_page_content    TEXT,
    published               INTEGER NOT NULL DEFAULT 0,
    student_capacity        INTEGER,
    created_at              INTEGER NOT NULL,
    updated_at              INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spaces_instructor
    ON spaces (instructor_id);

CREATE TABLE IF NOT EXISTS courses (
    id                      TEXT PRIMARY KEY,
    space_id                TEXT NOT NULL REFERENCES spaces (id) ON DELETE CASCADE,
    title                   TEXT NOT NULL,
    slug                    TEXT NOT NULL,
    description             TEXT NOT NULL DEFAULT '',
    cover_url               TEXT,
    course_page_content     TEXT,
    pricing                 TEXT NOT NULL DEFAULT 'free' CHECK (pricing IN ('free', 'paid')),
    price_cents             INTEGER NOT NULL DEFAULT 0,
    currency                TEXT NOT NULL DEFAULT 'JPY',
    payment_product_ref     TEXT,
    payment_price_ref       TEXT,
    published               INTEGER NOT NULL DEFAULT 0,
    position                INTEGER NOT NULL DEFAULT 0,
    created_at              INTEGER NOT NULL,
    updated_at              INTEGER NOT NULL,
    UNIQUE (space_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_courses_space
    ON courses (space_id);

CREATE TABLE IF NOT EXISTS lessons (
    id              TEXT PRIMARY KEY,
    course_id       TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    video_url       TEXT,
    position        INTEGER NOT NULL DEFAULT 0,
    free_preview    INTEGER NOT NULL DEFAULT 0,
    published       INTEGER NOT NULL DEFAULT 0,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lessons_course
    ON lessons (course_id, position);

CREATE TABLE IF NOT EXISTS space_students (
    space_id        TEXT NOT NULL REFERENCES spaces (id) ON DELETE CASCADE,
    student_id      TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'removed')),
    created_at      INTEGER NOT NULL,
    PRIMARY KEY (space_id, student_id)
);

CREATE TABLE IF NOT EXISTS course_purchases (
    id              TEXT PRIMARY KEY,
    course_id       TEXT NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
    student_id      TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    status          TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'refunded')),
    amount_cents    INTEGER NOT NULL DEFAULT 0,
    currency        TEXT NOT NULL DEFAULT 'JPY',
    provider_ref    TEXT,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    UNIQUE (course_id, student_id)
);

CREATE TABLE IF NOT EXISTS lesson_completions (
    lesson_id       TEXT NOT NULL REFERENCES lessons (id) ON DELETE CASCADE,
    student_id      TEXT NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
    created_at      INTEGER NOT NULL,
    PRIMARY KEY (lesson_id, student_id)
);
`
