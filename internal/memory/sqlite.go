package memory

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/John-Robertt/organizer/internal/domain"
)

//go:embed schema.sql
var schema string

// SQLite 把 memory 存进一个 SQLite 数据库（两张表：destinations、hints）。
type SQLite struct {
	Path     string
	ReadOnly bool
}

func NewSQLite(path string, readOnly bool) SQLite {
	return SQLite{
		Path:     filepath.Clean(strings.TrimSpace(path)),
		ReadOnly: readOnly,
	}
}

// open 打开数据库；只读模式用 mode=ro 打开且不建表，保证 dry-run 与 memory show 不会改动文件。
func (s SQLite) open() (*sql.DB, error) {
	if s.ReadOnly {
		db, err := sql.Open("sqlite3", "file:"+s.Path+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return db, nil
	}

	db, err := sql.Open("sqlite3", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Load 读出两张表；数据库文件不存在时返回空表（不会因为读取而创建文件）。
func (s SQLite) Load() (*Table, error) {
	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return NewTable(), nil
		}
		return nil, err
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t := NewTable()

	rows, err := db.Query("SELECT kind, path FROM destinations")
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	for rows.Next() {
		var k, p string
		if err := rows.Scan(&k, &p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		kind, ok := domain.ParseKind(k)
		if !ok {
			continue
		}
		if err := t.RememberDestination(kind, p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("destination %q: %w", k, err)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	rows.Close()

	rows, err = db.Query("SELECT raw, substitution FROM hints")
	if err != nil {
		return nil, fmt.Errorf("list hints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw, sub string
		if err := rows.Scan(&raw, &sub); err != nil {
			return nil, fmt.Errorf("scan hint: %w", err)
		}
		t.RememberHint(raw, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hints: %w", err)
	}
	return t, nil
}

// Save 在一个事务里整体替换两张表的内容。
func (s SQLite) Save(t *Table) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM destinations"); err != nil {
		return fmt.Errorf("clear destinations: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM hints"); err != nil {
		return fmt.Errorf("clear hints: %w", err)
	}
	for _, e := range t.Destinations() {
		if _, err := tx.Exec("INSERT INTO destinations (kind, path) VALUES (?, ?)", e.Key, e.Value); err != nil {
			return fmt.Errorf("insert destination: %w", err)
		}
	}
	for _, e := range t.Hints() {
		if _, err := tx.Exec("INSERT INTO hints (raw, substitution) VALUES (?, ?)", e.Key, e.Value); err != nil {
			return fmt.Errorf("insert hint: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
