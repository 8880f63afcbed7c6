package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/fadilmartias/cv-evaluator/internal/model"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	BackendFile = "file"

	lockRetryDelay = 20 * time.Millisecond
)

// record is the on-disk shape of one chunk; the document type is the map key.
type record struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	DocumentID  string `json:"document_id"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

type fileDocuments map[model.DocumentType][]record

// FileBackend keeps chunks per document type in a JSON file shared by every
// process pointing at the same path. Mutations hold an exclusive lock on a
// ".lock" sidecar, reload the file, apply the change and write it back, so
// neither goroutines nor other processes lose updates. Searches reload the
// file when its modification time or size changed.
type FileBackend struct {
	path string
	lock *flock.Flock
	log  *zap.Logger

	mu    sync.Mutex
	docs  fileDocuments
	stamp fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

func statStamp(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, true
}

// NewFileBackend loads path if it exists. An unreadable file is logged and
// the backend starts empty.
func NewFileBackend(path string, log *zap.Logger) *FileBackend {
	b := &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  logger.WithFields(log, zap.String("path", path)),
		docs: fileDocuments{},
	}
	b.reload()
	return b
}

func (b *FileBackend) Name() string { return BackendFile }

func (b *FileBackend) Add(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return b.mutate(ctx, func(docs fileDocuments) bool {
		for _, c := range chunks {
			docs[c.DocumentType] = append(docs[c.DocumentType], record{
				ID:          c.ID,
				Text:        c.Text,
				DocumentID:  c.DocumentID,
				ChunkIndex:  c.Ordinal,
				TotalChunks: c.TotalChunks,
			})
		}
		return true
	})
}

func (b *FileBackend) DeleteDocument(ctx context.Context, documentID string) error {
	return b.mutate(ctx, func(docs fileDocuments) bool {
		removed := 0
		for docType, records := range docs {
			kept := records[:0:0]
			for _, r := range records {
				if r.DocumentID == documentID {
					removed++
					continue
				}
				kept = append(kept, r)
			}
			docs[docType] = kept
		}
		return removed > 0
	})
}

// mutate runs fn on the current file contents under both locks and saves the
// result when fn reports a change.
func (b *FileBackend) mutate(ctx context.Context, fn func(docs fileDocuments) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", b.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", b.lock.Path())
	}
	defer func() {
		if err := b.lock.Unlock(); err != nil {
			b.log.Warn("could not release store lock", zap.Error(err))
		}
	}()

	b.reload()
	if fn(b.docs) {
		b.persist()
	}
	return nil
}

type scoredRecord struct {
	docType model.DocumentType
	rec     record
	score   int
}

// Search ranks chunks by how many query tokens they contain. A chunk with no
// token is skipped; ties keep storage order.
func (b *FileBackend) Search(ctx context.Context, query string, types []model.DocumentType, limit int) ([]model.Chunk, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()

	if len(types) == 0 {
		types = b.knownTypes()
	}

	var matches []scoredRecord
	for _, docType := range types {
		for _, r := range b.docs[docType] {
			text := strings.ToLower(r.Text)
			score := 0
			for _, tok := range tokens {
				if strings.Contains(text, tok) {
					score++
				}
			}
			if score > 0 {
				matches = append(matches, scoredRecord{docType: docType, rec: r, score: score})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	chunks := make([]model.Chunk, len(matches))
	for i, m := range matches {
		chunks[i] = m.rec.chunk(m.docType)
	}
	return chunks, nil
}

// knownTypes returns stored types in declaration order, unknown ones last.
func (b *FileBackend) knownTypes() []model.DocumentType {
	var types []model.DocumentType
	seen := make(map[model.DocumentType]bool, len(b.docs))
	for _, t := range model.DocumentTypes {
		if _, ok := b.docs[t]; ok {
			types = append(types, t)
			seen[t] = true
		}
	}
	var rest []model.DocumentType
	for t := range b.docs {
		if !seen[t] {
			rest = append(rest, t)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(types, rest...)
}

// persist writes the whole structure; failures are logged, not returned.
// Callers hold b.mu and the file lock.
func (b *FileBackend) persist() {
	if err := saveDocuments(b.path, b.docs); err != nil {
		b.log.Error("could not save document file", zap.Error(err))
		return
	}
	b.stamp, _ = statStamp(b.path)
}

// reload replaces the memory copy with the file contents. A missing file
// means no documents; an unreadable one is logged and the memory copy kept.
// Callers hold b.mu.
func (b *FileBackend) reload() {
	docs, err := loadDocuments(b.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		b.docs = fileDocuments{}
	case err != nil:
		b.log.Warn("could not load document file, keeping current documents", zap.Error(err))
	default:
		b.docs = docs
	}
	b.stamp, _ = statStamp(b.path)
}

// refresh reloads only when another writer replaced the file.
func (b *FileBackend) refresh() {
	stamp, ok := statStamp(b.path)
	if !ok || stamp.equal(b.stamp) {
		return
	}
	b.reload()
}

func (r record) chunk(docType model.DocumentType) model.Chunk {
	return model.Chunk{
		ID:           r.ID,
		Text:         r.Text,
		DocumentType: docType,
		DocumentID:   r.DocumentID,
		Ordinal:      r.ChunkIndex,
		TotalChunks:  r.TotalChunks,
	}
}

func loadDocuments(path string) (fileDocuments, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs := fileDocuments{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

// saveDocuments writes to a temp file in the same directory and renames it
// over path.
func saveDocuments(path string, docs fileDocuments) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
