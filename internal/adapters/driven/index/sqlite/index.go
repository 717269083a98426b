package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/askdocs/internal/adapters/driven/index/sqlite/migrations"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Config holds configuration for the vector index.
type Config struct {
	// DataDir is where the snapshot lives.
	// Defaults to ~/.askdocs/data.
	DataDir string

	// Similarity selects the scoring function (default: cosine).
	// Fixed per deployment; changing it invalidates relative scores.
	Similarity domain.Similarity
}

// entry is an index entry with its precomputed vector norm.
type entry struct {
	domain.IndexEntry
	norm float64
}

// Index is the vector similarity store. Searches run against in-memory
// state; every upsert and delete batch is committed to the SQLite
// snapshot before it becomes visible to readers.
type Index struct {
	db   *sql.DB
	path string
	sim  domain.Similarity

	mu      sync.RWMutex
	entries map[string]*entry              // child ID -> entry
	parents map[string]domain.ParentChunk  // parent ID -> parent
	byDoc   map[string]map[string]struct{} // document ID -> child IDs
	dim     int
}

// New creates a vector index backed by a snapshot in cfg.DataDir and
// loads the last durable state.
func New(cfg Config) (*Index, error) {
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".askdocs", "data")
	}
	if cfg.Similarity == "" {
		cfg.Similarity = domain.SimilarityCosine
	}
	if !cfg.Similarity.IsValid() {
		return nil, fmt.Errorf("%w: unknown similarity %q", domain.ErrInvalidInput, cfg.Similarity)
	}

	// Ensure directory exists
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening snapshot: %w", domain.ErrIndexUnavailable, err)
	}

	idx := &Index{
		db:      db,
		path:    dbPath,
		sim:     cfg.Similarity,
		entries: make(map[string]*entry),
		parents: make(map[string]domain.ParentChunk),
		byDoc:   make(map[string]map[string]struct{}),
	}

	// Run migrations
	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrIndexUnavailable, err)
	}

	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: loading snapshot: %w", domain.ErrIndexUnavailable, err)
	}

	return idx, nil
}

// Path returns the snapshot file path.
func (x *Index) Path() string {
	return x.path
}

// Similarity returns the configured scoring function.
func (x *Index) Similarity() domain.Similarity {
	return x.sim
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// migrate runs all pending migrations.
func (x *Index) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// load rebuilds the in-memory state from the snapshot. Entries whose
// parent row is missing belong to a partially written batch and are
// discarded.
func (x *Index) load() error {
	rows, err := x.db.Query("SELECT id, document_id, owner_id, content, position FROM parents")
	if err != nil {
		return fmt.Errorf("querying parents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ParentChunk
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.OwnerID, &p.Text, &p.Position); err != nil {
			return fmt.Errorf("scanning parent: %w", err)
		}
		x.parents[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating parents: %w", err)
	}

	entryRows, err := x.db.Query("SELECT child_id, owner_id, document_id, parent_id, embedding FROM entries")
	if err != nil {
		return fmt.Errorf("querying entries: %w", err)
	}
	defer entryRows.Close()

	dropped := 0
	for entryRows.Next() {
		var e domain.IndexEntry
		var blob []byte
		if err := entryRows.Scan(&e.ChildID, &e.OwnerID, &e.DocumentID, &e.ParentID, &blob); err != nil {
			return fmt.Errorf("scanning entry: %w", err)
		}
		if _, ok := x.parents[e.ParentID]; !ok {
			dropped++
			continue
		}
		e.Embedding = bytesToFloat32Slice(blob)
		x.insertLocked(e)
	}
	if err := entryRows.Err(); err != nil {
		return fmt.Errorf("iterating entries: %w", err)
	}

	if dropped > 0 {
		logger.Warn("Index load: dropped %d entries without parent chunks", dropped)
	}
	logger.Debug("Index load: %d entries, %d parents", len(x.entries), len(x.parents))

	return nil
}

// Upsert adds one document's parents and index entries as a single
// durable batch. ChildID is the upsert key; re-upsert replaces.
func (x *Index) Upsert(ctx context.Context, parents []domain.ParentChunk, entries []domain.IndexEntry) error {
	if len(entries) == 0 && len(parents) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, e := range entries {
		if x.dim != 0 && len(e.Embedding) != x.dim {
			return fmt.Errorf("%w: embedding dimension %d, index dimension %d",
				domain.ErrInvalidInput, len(e.Embedding), x.dim)
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, p := range parents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO parents (id, document_id, owner_id, content, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				document_id = excluded.document_id,
				owner_id = excluded.owner_id,
				content = excluded.content,
				position = excluded.position
		`, p.ID, p.DocumentID, p.OwnerID, p.Text, p.Position)
		if err != nil {
			return fmt.Errorf("%w: saving parent %s: %w", domain.ErrIndexUnavailable, p.ID, err)
		}
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (child_id, owner_id, document_id, parent_id, embedding)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(child_id) DO UPDATE SET
				owner_id = excluded.owner_id,
				document_id = excluded.document_id,
				parent_id = excluded.parent_id,
				embedding = excluded.embedding
		`, e.ChildID, e.OwnerID, e.DocumentID, e.ParentID, float32SliceToBytes(e.Embedding))
		if err != nil {
			return fmt.Errorf("%w: saving entry %s: %w", domain.ErrIndexUnavailable, e.ChildID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: flushing upsert batch: %w", domain.ErrIndexUnavailable, err)
	}

	// Durable; now make the batch visible to searches.
	for _, p := range parents {
		x.parents[p.ID] = p
	}
	for _, e := range entries {
		x.insertLocked(e)
	}

	return nil
}

// insertLocked adds an entry to the in-memory maps. Caller holds the
// write lock (or is the single-threaded loader).
func (x *Index) insertLocked(e domain.IndexEntry) {
	if x.dim == 0 {
		x.dim = len(e.Embedding)
	}

	if old, ok := x.entries[e.ChildID]; ok && old.DocumentID != e.DocumentID {
		delete(x.byDoc[old.DocumentID], e.ChildID)
	}

	x.entries[e.ChildID] = &entry{IndexEntry: e, norm: vectorNorm(e.Embedding)}
	if x.byDoc[e.DocumentID] == nil {
		x.byDoc[e.DocumentID] = make(map[string]struct{})
	}
	x.byDoc[e.DocumentID][e.ChildID] = struct{}{}
}

// Search returns at most topK entries matching the filter, ranked by
// descending similarity. The filter is applied while scoring, never as
// a post-filter, so results are not starved by other tenants' entries.
func (x *Index) Search(_ context.Context, query []float32, topK int, filter driven.SearchFilter) ([]driven.VectorHit, error) {
	if filter.OwnerID == "" {
		return nil, fmt.Errorf("%w: search filter requires an owner", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, nil
	}

	var docSet map[string]struct{}
	if len(filter.DocumentIDs) > 0 {
		docSet = make(map[string]struct{}, len(filter.DocumentIDs))
		for _, id := range filter.DocumentIDs {
			docSet[id] = struct{}{}
		}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dim != 0 && len(query) != x.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrInvalidInput, len(query), x.dim)
	}

	queryNorm := vectorNorm(query)

	hits := make([]driven.VectorHit, 0, topK)
	for _, e := range x.entries {
		if e.OwnerID != filter.OwnerID {
			continue
		}
		if docSet != nil {
			if _, ok := docSet[e.DocumentID]; !ok {
				continue
			}
		}

		score := dotProduct(query, e.Embedding)
		if x.sim == domain.SimilarityCosine {
			if queryNorm == 0 || e.norm == 0 {
				score = 0
			} else {
				score /= queryNorm * e.norm
			}
		}

		hits = append(hits, driven.VectorHit{
			ChildID:  e.ChildID,
			ParentID: e.ParentID,
			Score:    score,
		})
	}

	// Deterministic ordering: score descending, child ID as tiebreak.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChildID < hits[j].ChildID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// GetParent retrieves a parent chunk by ID.
func (x *Index) GetParent(_ context.Context, parentID string) (*domain.ParentChunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	p, ok := x.parents[parentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// DeleteDocument removes all entries and parent chunks for the
// document. The batch is committed to the snapshot before memory is
// mutated, and readers hold the lock for a whole search, so a search
// sees all of the document's entries or none of them.
func (x *Index) DeleteDocument(ctx context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("%w: deleting entries: %w", domain.ErrIndexUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM parents WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("%w: deleting parents: %w", domain.ErrIndexUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: flushing delete batch: %w", domain.ErrIndexUnavailable, err)
	}

	for childID := range x.byDoc[documentID] {
		delete(x.entries, childID)
	}
	delete(x.byDoc, documentID)
	for id, p := range x.parents {
		if p.DocumentID == documentID {
			delete(x.parents, id)
		}
	}

	return nil
}

// Close closes the snapshot database.
func (x *Index) Close() error {
	return x.db.Close()
}

// dotProduct computes the inner product of two equal-length vectors.
func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// vectorNorm computes the Euclidean norm.
func vectorNorm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
