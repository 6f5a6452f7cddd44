package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

// Create inserts a new book and returns the id assigned to it.
// Titles are not required to be unique.
func (db *DB) Create(b models.Book) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO books (title, author, tags) VALUES (?, ?, ?)`,
		b.Title, b.Author, b.Tags)
	if err != nil {
		return 0, storageErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("create: last insert id", err)
	}
	return id, nil
}

// ListAll returns every book in insertion order. An empty store yields an
// empty slice.
func (db *DB) ListAll() ([]models.Book, error) {
	rows, err := db.conn.Query(`SELECT id, title, author, tags FROM books ORDER BY id`)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Tags); err != nil {
			return nil, storageErr("list: scan", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return out, nil
}

// Get returns the book with the given id, or apperr.ErrNotFound.
func (db *DB) Get(id int64) (models.Book, error) {
	var b models.Book
	err := db.conn.QueryRow(`SELECT id, title, author, tags FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Tags)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, fmt.Errorf("catalog: book %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Book{}, storageErr("get", err)
	}
	return b, nil
}

// FindByFields returns the first book (lowest id) whose fields all match
// exactly. The bool is false when nothing matches.
func (db *DB) FindByFields(title, author, tags string) (models.Book, bool, error) {
	var b models.Book
	err := db.conn.QueryRow(`
		SELECT id, title, author, tags
		FROM books
		WHERE title = ? AND author = ? AND tags = ?
		ORDER BY id
		LIMIT 1
	`, title, author, tags).Scan(&b.ID, &b.Title, &b.Author, &b.Tags)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, false, nil
	}
	if err != nil {
		return models.Book{}, false, storageErr("find", err)
	}
	return b, true, nil
}

// UpdateByID overwrites title, author and tags of the book with the given id.
// It reports false when no such book exists.
func (db *DB) UpdateByID(id int64, b models.Book) (bool, error) {
	res, err := db.conn.Exec(`UPDATE books SET title = ?, author = ?, tags = ? WHERE id = ?`,
		b.Title, b.Author, b.Tags, id)
	if err != nil {
		return false, storageErr("update", err)
	}
	return affected(res, "update")
}

// UpdateIfUnchanged overwrites the book with the given id only while its
// stored fields still equal prev. It reports false when the row is missing or
// was changed in between; the check and the write are one statement.
func (db *DB) UpdateIfUnchanged(id int64, prev, next models.Book) (bool, error) {
	res, err := db.conn.Exec(`
		UPDATE books SET title = ?, author = ?, tags = ?
		WHERE id = ? AND title = ? AND author = ? AND tags = ?
	`, next.Title, next.Author, next.Tags, id, prev.Title, prev.Author, prev.Tags)
	if err != nil {
		return false, storageErr("update if unchanged", err)
	}
	return affected(res, "update if unchanged")
}

// DeleteByID removes the book with the given id. It reports false when no
// such book exists.
func (db *DB) DeleteByID(id int64) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return false, storageErr("delete", err)
	}
	return affected(res, "delete")
}

// DeleteByTitle removes every book whose title matches exactly and returns
// how many were removed.
func (db *DB) DeleteByTitle(title string) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM books WHERE title = ?`, title)
	if err != nil {
		return 0, storageErr("delete by title", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete by title: rows affected", err)
	}
	return n, nil
}

// Count returns the number of stored books.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM books`).Scan(&n); err != nil {
		return 0, storageErr("count", err)
	}
	return n, nil
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr(op+": rows affected", err)
	}
	return n > 0, nil
}
