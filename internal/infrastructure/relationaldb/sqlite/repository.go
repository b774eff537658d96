// Package sqlite provides a SQLite implementation of the FactStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/factgraph/internal/domain/entities"
	"github.com/ersonp/factgraph/internal/infrastructure/config"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.FactStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Objects (graph nodes, deduplicated by type and normalized value)
	CREATE TABLE IF NOT EXISTS objects (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		normalized_value TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(type, normalized_value)
	);
	CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);
	CREATE INDEX IF NOT EXISTS idx_objects_normalized ON objects(type, normalized_value);

	-- Facts (graph edges, scalar fields only; bindings live in fact_bindings)
	CREATE TABLE IF NOT EXISTS facts (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		in_reference_to_id TEXT,
		organization_id TEXT,
		origin_id TEXT,
		added_by_id TEXT,
		access_mode TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 1.0,
		trust REAL NOT NULL DEFAULT 0.8,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_facts_type ON facts(type);
	CREATE INDEX IF NOT EXISTS idx_facts_origin ON facts(origin_id);
	CREATE INDEX IF NOT EXISTS idx_facts_created ON facts(created_at);

	-- Fact bindings (edge endpoints; position preserves binding order)
	CREATE TABLE IF NOT EXISTS fact_bindings (
		fact_id TEXT NOT NULL REFERENCES facts(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		object_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		PRIMARY KEY (fact_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_fact_bindings_object ON fact_bindings(object_id);

	-- Explicit ACL grants on facts
	CREATE TABLE IF NOT EXISTS fact_acl (
		id TEXT PRIMARY KEY,
		fact_id TEXT NOT NULL REFERENCES facts(id) ON DELETE CASCADE,
		subject_id TEXT NOT NULL,
		origin_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_fact_acl_fact ON fact_acl(fact_id);

	-- Analyst comments on facts
	CREATE TABLE IF NOT EXISTS fact_comments (
		id TEXT PRIMARY KEY,
		fact_id TEXT NOT NULL REFERENCES facts(id) ON DELETE CASCADE,
		reply_to_id TEXT,
		origin_id TEXT,
		comment TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_fact_comments_fact ON fact_comments(fact_id);

	-- Object and fact type definitions (defaults plus custom types)
	CREATE TABLE IF NOT EXISTS type_defs (
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (kind, name)
	);

	-- Fact version history (tracks changes over time)
	CREATE TABLE IF NOT EXISTS fact_versions (
		id TEXT PRIMARY KEY,
		fact_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		change_type TEXT NOT NULL,
		data TEXT NOT NULL,
		reason TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(fact_id, version)
	);
	CREATE INDEX IF NOT EXISTS idx_fact_versions_fact ON fact_versions(fact_id);
	CREATE INDEX IF NOT EXISTS idx_fact_versions_type ON fact_versions(change_type);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		fact_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_fact ON audit_log(fact_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveObject saves or updates an object.
func (r *Repository) SaveObject(ctx context.Context, object *entities.Object) error {
	query := `
		INSERT INTO objects (id, type, value, normalized_value, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type, normalized_value) DO UPDATE SET
			value = excluded.value
	`
	_, err := r.db.ExecContext(ctx, query,
		object.ID,
		string(object.Type),
		object.Value,
		entities.NormalizeValue(object.Value),
		object.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving object: %w", err)
	}
	return nil
}

// FindObjectByID finds an object by its ID.
func (r *Repository) FindObjectByID(ctx context.Context, objectID string) (*entities.Object, error) {
	query := `
		SELECT id, type, value, created_at
		FROM objects
		WHERE id = ?
	`
	return r.scanObjectRow(r.db.QueryRowContext(ctx, query, objectID))
}

// FindObjectByValue finds an object by type and normalized value (case-insensitive).
func (r *Repository) FindObjectByValue(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	query := `
		SELECT id, type, value, created_at
		FROM objects
		WHERE type = ? AND normalized_value = ?
	`
	return r.scanObjectRow(r.db.QueryRowContext(ctx, query, string(objectType), entities.NormalizeValue(value)))
}

// FindOrCreateObject finds an object by type and value or creates it if not found.
// This method is atomic - it uses INSERT OR IGNORE followed by SELECT to avoid race conditions.
func (r *Repository) FindOrCreateObject(ctx context.Context, objectType entities.ObjectType, value string) (*entities.Object, error) {
	// Atomically insert if not exists (ON CONFLICT DO NOTHING)
	insertQuery := `
		INSERT OR IGNORE INTO objects (id, type, value, normalized_value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, insertQuery,
		generateUUID(),
		string(objectType),
		value,
		entities.NormalizeValue(value),
		timeNow(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting object: %w", err)
	}

	// Always fetch the object (either newly inserted or pre-existing)
	return r.FindObjectByValue(ctx, objectType, value)
}

// ListObjects lists objects with pagination.
func (r *Repository) ListObjects(ctx context.Context, limit, offset int) ([]*entities.Object, error) {
	query := `
		SELECT id, type, value, created_at
		FROM objects
		ORDER BY type ASC, normalized_value ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying objects: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Object, 0, limit)
	for rows.Next() {
		var object entities.Object
		var objectType string
		if err := rows.Scan(
			&object.ID,
			&objectType,
			&object.Value,
			&object.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning object: %w", err)
		}
		object.Type = entities.ObjectType(objectType)
		result = append(result, &object)
	}
	return result, rows.Err()
}

// CountObjects returns the total number of objects.
func (r *Repository) CountObjects(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM objects`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting objects: %w", err)
	}
	return count, nil
}

// scanObjectRow scans a single object row, mapping ErrNoRows to nil.
func (r *Repository) scanObjectRow(row *sql.Row) (*entities.Object, error) {
	var object entities.Object
	var objectType string
	err := row.Scan(
		&object.ID,
		&objectType,
		&object.Value,
		&object.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning object: %w", err)
	}
	object.Type = entities.ObjectType(objectType)
	return &object, nil
}

// SaveFact saves a fact and its bindings in one transaction. Binding order is
// recorded in the position column so FindFactByID returns it unchanged.
func (r *Repository) SaveFact(ctx context.Context, fact *entities.StoredFact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	factQuery := `
		INSERT INTO facts (id, type, value, in_reference_to_id, organization_id,
			origin_id, added_by_id, access_mode, confidence, trust, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			value = excluded.value,
			access_mode = excluded.access_mode,
			confidence = excluded.confidence,
			trust = excluded.trust,
			last_seen_at = excluded.last_seen_at
	`
	_, err = tx.ExecContext(ctx, factQuery,
		fact.ID,
		string(fact.Type),
		fact.Value,
		nullString(fact.InReferenceToID),
		nullString(fact.OrganizationID),
		nullString(fact.OriginID),
		nullString(fact.AddedByID),
		string(fact.AccessMode),
		fact.Confidence,
		fact.Trust,
		fact.CreatedAt,
		fact.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("saving fact: %w", err)
	}

	// Rewrite the binding list so updates replace it wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM fact_bindings WHERE fact_id = ?`, fact.ID); err != nil {
		return fmt.Errorf("clearing fact bindings: %w", err)
	}
	bindingQuery := `INSERT INTO fact_bindings (fact_id, position, object_id, direction) VALUES (?, ?, ?, ?)`
	for i, binding := range fact.Bindings {
		if _, err := tx.ExecContext(ctx, bindingQuery, fact.ID, i, binding.ObjectID, string(binding.Direction)); err != nil {
			return fmt.Errorf("saving fact binding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing fact: %w", err)
	}
	return nil
}

// FindFactByID finds a stored fact by its ID, bindings included.
func (r *Repository) FindFactByID(ctx context.Context, factID string) (*entities.StoredFact, error) {
	query := `
		SELECT id, type, value, in_reference_to_id, organization_id,
			origin_id, added_by_id, access_mode, confidence, trust, created_at, last_seen_at
		FROM facts
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, factID)

	fact, err := scanStoredFact(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bindings, err := r.findBindings(ctx, fact.ID)
	if err != nil {
		return nil, err
	}
	fact.Bindings = bindings
	return fact, nil
}

// FindFactsByObject finds all stored facts bound to the given object,
// newest first.
func (r *Repository) FindFactsByObject(ctx context.Context, objectID string) ([]entities.StoredFact, error) {
	query := `
		SELECT f.id, f.type, f.value, f.in_reference_to_id, f.organization_id,
			f.origin_id, f.added_by_id, f.access_mode, f.confidence, f.trust, f.created_at, f.last_seen_at
		FROM facts f
		JOIN fact_bindings b ON b.fact_id = f.id
		WHERE b.object_id = ?
		GROUP BY f.id
		ORDER BY f.created_at DESC
	`
	return r.queryFacts(ctx, query, objectID)
}

// ListFacts lists stored facts with pagination, newest first.
func (r *Repository) ListFacts(ctx context.Context, limit, offset int) ([]entities.StoredFact, error) {
	query := `
		SELECT id, type, value, in_reference_to_id, organization_id,
			origin_id, added_by_id, access_mode, confidence, trust, created_at, last_seen_at
		FROM facts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.queryFacts(ctx, query, limit, offset)
}

// RefreshFactSeen updates a fact's last-seen timestamp.
func (r *Repository) RefreshFactSeen(ctx context.Context, factID string) error {
	query := `UPDATE facts SET last_seen_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, timeNow(), factID)
	if err != nil {
		return fmt.Errorf("refreshing fact: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("fact not found: %s", factID)
	}
	return nil
}

// DeleteFact deletes a fact by ID. Bindings, ACL entries and comments go with
// it via ON DELETE CASCADE.
func (r *Repository) DeleteFact(ctx context.Context, factID string) error {
	query := `DELETE FROM facts WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, factID)
	if err != nil {
		return fmt.Errorf("deleting fact: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("fact not found: %s", factID)
	}
	return nil
}

// CountFacts returns the total number of facts.
func (r *Repository) CountFacts(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM facts`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting facts: %w", err)
	}
	return count, nil
}

// findBindings loads a fact's bindings in stored order.
func (r *Repository) findBindings(ctx context.Context, factID string) ([]entities.Binding, error) {
	query := `
		SELECT object_id, direction
		FROM fact_bindings
		WHERE fact_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("querying fact bindings: %w", err)
	}
	defer rows.Close()

	var bindings []entities.Binding
	for rows.Next() {
		var binding entities.Binding
		var direction string
		if err := rows.Scan(&binding.ObjectID, &direction); err != nil {
			return nil, fmt.Errorf("scanning fact binding: %w", err)
		}
		binding.Direction = entities.Direction(direction)
		bindings = append(bindings, binding)
	}
	return bindings, rows.Err()
}

// queryFacts is a helper to execute fact queries and attach bindings.
func (r *Repository) queryFacts(ctx context.Context, query string, args ...any) ([]entities.StoredFact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	facts := make([]entities.StoredFact, 0, 16)
	for rows.Next() {
		fact, err := scanStoredFact(rows.Scan)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *fact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range facts {
		bindings, err := r.findBindings(ctx, facts[i].ID)
		if err != nil {
			return nil, err
		}
		facts[i].Bindings = bindings
	}
	return facts, nil
}

// scanStoredFact scans one fact row's scalar columns.
func scanStoredFact(scan func(dest ...any) error) (*entities.StoredFact, error) {
	var fact entities.StoredFact
	var factType, accessMode string
	var inReferenceTo, organization, origin, addedBy sql.NullString

	err := scan(
		&fact.ID,
		&factType,
		&fact.Value,
		&inReferenceTo,
		&organization,
		&origin,
		&addedBy,
		&accessMode,
		&fact.Confidence,
		&fact.Trust,
		&fact.CreatedAt,
		&fact.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning fact: %w", err)
	}

	fact.Type = entities.FactType(factType)
	fact.AccessMode = entities.AccessMode(accessMode)
	fact.InReferenceToID = inReferenceTo.String
	fact.OrganizationID = organization.String
	fact.OriginID = origin.String
	fact.AddedByID = addedBy.String
	return &fact, nil
}

// SaveAclEntry saves an ACL entry for a fact.
func (r *Repository) SaveAclEntry(ctx context.Context, entry *entities.AclEntry) error {
	query := `
		INSERT INTO fact_acl (id, fact_id, subject_id, origin_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.FactID,
		entry.SubjectID,
		nullString(entry.OriginID),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving acl entry: %w", err)
	}
	return nil
}

// FindAclByFact finds all ACL entries for a fact, oldest first.
func (r *Repository) FindAclByFact(ctx context.Context, factID string) ([]entities.AclEntry, error) {
	query := `
		SELECT id, fact_id, subject_id, origin_id, created_at
		FROM fact_acl
		WHERE fact_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("querying acl entries: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.AclEntry, 0, 4)
	for rows.Next() {
		var entry entities.AclEntry
		var origin sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.FactID,
			&entry.SubjectID,
			&origin,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning acl entry: %w", err)
		}
		entry.OriginID = origin.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SaveComment saves a comment on a fact.
func (r *Repository) SaveComment(ctx context.Context, comment *entities.Comment) error {
	query := `
		INSERT INTO fact_comments (id, fact_id, reply_to_id, origin_id, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.FactID,
		nullString(comment.ReplyToID),
		nullString(comment.OriginID),
		comment.Comment,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving comment: %w", err)
	}
	return nil
}

// FindCommentsByFact finds all comments on a fact, oldest first.
func (r *Repository) FindCommentsByFact(ctx context.Context, factID string) ([]entities.Comment, error) {
	query := `
		SELECT id, fact_id, reply_to_id, origin_id, comment, created_at
		FROM fact_comments
		WHERE fact_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := make([]entities.Comment, 0, 4)
	for rows.Next() {
		var comment entities.Comment
		var replyTo, origin sql.NullString
		if err := rows.Scan(
			&comment.ID,
			&comment.FactID,
			&replyTo,
			&origin,
			&comment.Comment,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comment.ReplyToID = replyTo.String
		comment.OriginID = origin.String
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// SaveTypeDef saves or updates a type definition.
func (r *Repository) SaveTypeDef(ctx context.Context, def *entities.TypeDef) error {
	query := `
		INSERT INTO type_defs (kind, name, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, name) DO UPDATE SET
			description = excluded.description
	`
	_, err := r.db.ExecContext(ctx, query,
		string(def.Kind),
		def.Name,
		def.Description,
		def.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving type definition: %w", err)
	}
	return nil
}

// FindTypeDef finds a type definition by kind and name.
func (r *Repository) FindTypeDef(ctx context.Context, kind entities.TypeKind, name string) (*entities.TypeDef, error) {
	query := `
		SELECT kind, name, description, created_at
		FROM type_defs
		WHERE kind = ? AND name = ?
	`
	row := r.db.QueryRowContext(ctx, query, string(kind), name)

	var def entities.TypeDef
	var defKind string
	var description sql.NullString

	err := row.Scan(&defKind, &def.Name, &description, &def.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning type definition: %w", err)
	}

	def.Kind = entities.TypeKind(defKind)
	def.Description = description.String
	return &def, nil
}

// ListTypeDefs lists all type definitions of a kind.
func (r *Repository) ListTypeDefs(ctx context.Context, kind entities.TypeKind) ([]entities.TypeDef, error) {
	query := `
		SELECT kind, name, description, created_at
		FROM type_defs
		WHERE kind = ?
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying type definitions: %w", err)
	}
	defer rows.Close()

	defs := make([]entities.TypeDef, 0, 16)
	for rows.Next() {
		var def entities.TypeDef
		var defKind string
		var description sql.NullString

		if err := rows.Scan(&defKind, &def.Name, &description, &def.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning type definition: %w", err)
		}
		def.Kind = entities.TypeKind(defKind)
		def.Description = description.String
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// DeleteTypeDef deletes a type definition by kind and name.
func (r *Repository) DeleteTypeDef(ctx context.Context, kind entities.TypeKind, name string) error {
	query := `DELETE FROM type_defs WHERE kind = ? AND name = ?`
	result, err := r.db.ExecContext(ctx, query, string(kind), name)
	if err != nil {
		return fmt.Errorf("deleting type definition: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("type definition not found: %s", name)
	}
	return nil
}

// SaveVersion saves a new fact version.
func (r *Repository) SaveVersion(ctx context.Context, version *entities.FactVersion) error {
	data, err := json.Marshal(version.Data)
	if err != nil {
		return fmt.Errorf("marshaling fact data: %w", err)
	}

	query := `
		INSERT INTO fact_versions (id, fact_id, version, change_type, data, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		version.ID,
		version.FactID,
		version.Version,
		string(version.ChangeType),
		string(data),
		version.Reason,
		version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving fact version: %w", err)
	}
	return nil
}

// FindVersionsByFact finds all versions of a fact, ordered by version descending.
func (r *Repository) FindVersionsByFact(ctx context.Context, factID string) ([]entities.FactVersion, error) {
	query := `
		SELECT id, fact_id, version, change_type, data, reason, created_at
		FROM fact_versions
		WHERE fact_id = ?
		ORDER BY version DESC
	`
	rows, err := r.db.QueryContext(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("querying fact versions: %w", err)
	}
	defer rows.Close()

	versions := make([]entities.FactVersion, 0, 16)
	for rows.Next() {
		v, err := r.scanFactVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// CountVersions counts how many versions a fact has.
func (r *Repository) CountVersions(ctx context.Context, factID string) (int, error) {
	query := `SELECT COUNT(*) FROM fact_versions WHERE fact_id = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, factID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting versions: %w", err)
	}
	return count, nil
}

// scanFactVersion is a helper to scan a fact version row.
func (r *Repository) scanFactVersion(rows *sql.Rows) (*entities.FactVersion, error) {
	var v entities.FactVersion
	var changeType, data string
	var reason sql.NullString

	err := rows.Scan(
		&v.ID,
		&v.FactID,
		&v.Version,
		&changeType,
		&data,
		&reason,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning fact version: %w", err)
	}

	v.ChangeType = entities.ChangeType(changeType)
	v.Reason = reason.String

	if err := json.Unmarshal([]byte(data), &v.Data); err != nil {
		return nil, fmt.Errorf("unmarshaling fact data: %w", err)
	}

	return &v, nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, factID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (action, fact_id, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, nullString(factID), detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific fact.
func (r *Repository) FindAuditLog(ctx context.Context, factID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, fact_id, details, created_at
		FROM audit_log
		WHERE fact_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, factID)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var entryFactID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entryFactID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.FactID = entryFactID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
