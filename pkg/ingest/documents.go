package ingest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/casegraph/pkg/model"
)

// Document is the text extracted from one uploaded file
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Documents keeps OCR results, newest first, with an optional selection for
// the result viewer
type Documents struct {
	mu       sync.RWMutex
	docs     []Document
	selected string
}

// NewDocuments creates an empty registry
func NewDocuments() *Documents {
	return &Documents{}
}

// Add stores a result and returns it
func (d *Documents) Add(title, content string) Document {
	doc := Document{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = append([]Document{doc}, d.docs...)
	return doc
}

// List returns all documents, newest first
func (d *Documents) List() []Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Document, len(d.docs))
	copy(out, d.docs)
	return out
}

// Get looks up a document
func (d *Documents) Get(id string) (Document, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, doc := range d.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// Delete removes a document and clears the selection if it was selected
func (d *Documents) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, doc := range d.docs {
		if doc.ID == id {
			d.docs = append(d.docs[:i], d.docs[i+1:]...)
			if d.selected == id {
				d.selected = ""
			}
			return nil
		}
	}
	return fmt.Errorf("%w: document %s", model.ErrNotFound, id)
}

// Select marks a document for viewing; an empty id clears the selection
func (d *Documents) Select(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == "" {
		d.selected = ""
		return nil
	}
	for _, doc := range d.docs {
		if doc.ID == id {
			d.selected = id
			return nil
		}
	}
	return fmt.Errorf("%w: document %s", model.ErrNotFound, id)
}

// Selected returns the selected document, if any
func (d *Documents) Selected() (Document, bool) {
	d.mu.RLock()
	id := d.selected
	d.mu.RUnlock()
	if id == "" {
		return Document{}, false
	}
	return d.Get(id)
}
