// Package idcode renders the scannable identifier images for books and
// students and keeps them on disk at paths derived from entity identity.
//
// The image path is a pure function of the current title or full name,
// so a rename must delete the stale image and write the new one in the
// same operation or scans of the old code go dangling.
package idcode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/chidi/libman/internal/pkg/slug"
)

const (
	bookCodeDir    = "book_qrcodes"
	studentCodeDir = "students"

	imageSize = 256
)

// BookRecord is the metadata encoded on a book's identifier code.
type BookRecord struct {
	Title           string `json:"title"`
	AuthorID        int64  `json:"authorId"`
	AuthorFirstName string `json:"authorFirstname"`
	AuthorLastName  string `json:"authorLastname"`
	CategoryID      int64  `json:"categoryId"`
	CategoryName    string `json:"categoryName"`
}

// StudentRecord is the metadata encoded on a student's identifier code.
type StudentRecord struct {
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Level        int    `json:"level"`
	MatricNumber string `json:"matricNumber"`
}

// Encoder renders and persists identifier images under a static root.
type Encoder struct {
	baseDir string
}

// NewEncoder creates an encoder rooted at baseDir, creating the book
// and student subdirectories if needed.
func NewEncoder(baseDir string) (*Encoder, error) {
	for _, sub := range []string{bookCodeDir, studentCodeDir} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create code directory: %w", err)
		}
	}
	return &Encoder{baseDir: baseDir}, nil
}

// BookImagePath returns the relative path for a book's identifier image.
func BookImagePath(title string) string {
	return filepath.Join(bookCodeDir, slug.Make(title)+".png")
}

// StudentImagePath returns the relative path for a student's identifier image.
func StudentImagePath(firstName, lastName string) string {
	return filepath.Join(studentCodeDir, slug.FullName(firstName, lastName)+".png")
}

// EncodeBook renders the identifier image bytes for a book record.
func (e *Encoder) EncodeBook(record BookRecord) ([]byte, error) {
	return encode(record)
}

// EncodeStudent renders the identifier image bytes for a student record.
func (e *Encoder) EncodeStudent(record StudentRecord) ([]byte, error) {
	return encode(record)
}

// WriteBook renders and saves a book's identifier image, returning the
// relative path it was written to.
func (e *Encoder) WriteBook(record BookRecord) (string, error) {
	img, err := e.EncodeBook(record)
	if err != nil {
		return "", err
	}
	relPath := BookImagePath(record.Title)
	if err := e.write(relPath, img); err != nil {
		return "", err
	}
	return relPath, nil
}

// WriteStudent renders and saves a student's identifier image from the
// name parts, returning the relative path it was written to.
func (e *Encoder) WriteStudent(firstName, lastName string, record StudentRecord) (string, error) {
	img, err := e.EncodeStudent(record)
	if err != nil {
		return "", err
	}
	relPath := StudentImagePath(firstName, lastName)
	if err := e.write(relPath, img); err != nil {
		return "", err
	}
	return relPath, nil
}

// Remove deletes the image at the given relative path. A missing file
// is not an error; the image may never have been rendered.
func (e *Encoder) Remove(relPath string) error {
	err := os.Remove(filepath.Join(e.baseDir, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove identifier image: %w", err)
	}
	return nil
}

// Rename deletes the image at oldPath and runs write, which is expected
// to persist the image at the path derived from the new identity.
func (e *Encoder) Rename(oldPath string, write func() (string, error)) (string, error) {
	if err := e.Remove(oldPath); err != nil {
		return "", err
	}
	return write()
}

// FullPath resolves a relative image path against the static root.
func (e *Encoder) FullPath(relPath string) string {
	return filepath.Join(e.baseDir, relPath)
}

func encode(record interface{}) ([]byte, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal code payload: %w", err)
	}

	img, err := qrcode.Encode(string(payload), qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode identifier image: %w", err)
	}
	return img, nil
}

func (e *Encoder) write(relPath string, img []byte) error {
	if err := os.WriteFile(filepath.Join(e.baseDir, relPath), img, 0o644); err != nil {
		return fmt.Errorf("failed to write identifier image: %w", err)
	}
	return nil
}
