// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

package storage

import (
	"strings"
	"time"
)

// # Partial Updates

/*
Update accumulates SET assignments for a partial UPDATE statement. Entity
services add an assignment only for fields the caller actually supplied, so
untouched columns keep their stored values byte for byte.

Usage:

	u := storage.NewUpdate("spaces")
	u.Set("name", req.Name)        // only when req.Name != nil
	u.Where("id = ?", spaceID)
	stmt, ok := u.Build(db)

Build stamps updated_at automatically. When no assignments were added, Build
reports false and the caller skips the UPDATE entirely.
*/
type Update struct {
	table     string
	columns   []string
	values    []any
	condition string
	condArgs  []any
}

// NewUpdate starts a partial update against the named table.
func NewUpdate(table string) *Update {
	return &Update{table: table}
}

// Set adds a column assignment.
func (u *Update) Set(column string, value any) *Update {
	u.columns = append(u.columns, column)
	u.values = append(u.values, value)
	return u
}

// SetIf adds a column assignment only when the pointer is non-nil. A nil
// pointer means the caller omitted the field, not that it wants NULL.
func SetIf[T any](u *Update, column string, value *T) {
	if value != nil {
		u.Set(column, *value)
	}
}

// Where sets the statement's condition clause. The condition uses `?`
// placeholders like every other query in this package.
func (u *Update) Where(condition string, args ...any) *Update {
	u.condition = condition
	u.condArgs = args
	return u
}

// Empty reports whether no assignments have been added.
func (u *Update) Empty() bool {
	return len(u.columns) == 0
}

/*
Build produces a bound statement for the accumulated assignments, stamping
updated_at with the current epoch second.

Returns:
  - Statement: the bound UPDATE, valid only when ok is true.
  - bool: false when no assignments were added and no UPDATE should run.
*/
func (u *Update) Build(db DB) (Statement, bool) {
	if u.Empty() {
		return nil, false
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(u.table)
	b.WriteString(" SET ")

	args := make([]any, 0, len(u.values)+1+len(u.condArgs))
	for i, col := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = ?")
		args = append(args, u.values[i])
	}

	b.WriteString(", updated_at = ?")
	args = append(args, time.Now().Unix())

	if u.condition != "" {
		b.WriteString(" WHERE ")
		b.WriteString(u.condition)
		args = append(args, u.condArgs...)
	}

	return db.Prepare(b.String()).Bind(args...), true
}
