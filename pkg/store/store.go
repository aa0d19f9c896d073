// Package store implements the versioned upsert engine: it classifies each
// candidate record as duplicate, revision or first version, and applies the
// matching mutations inside the caller's transaction.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wifor-platform/statstore/pkg/apperrors"
	"github.com/wifor-platform/statstore/pkg/backend"
	"github.com/wifor-platform/statstore/pkg/schema"
)

// Store classifies and persists candidate records for any entity type.
type Store struct {
	dialect backend.Dialect
	logger  *zap.Logger
	sinks   []EventSink
}

// New creates a Store for one backend dialect. Sinks receive a copy of every
// classification event in addition to the structured log.
func New(dialect backend.Dialect, logger *zap.Logger, sinks ...EventSink) *Store {
	return &Store{
		dialect: dialect,
		logger:  logger.Named("store"),
		sinks:   sinks,
	}
}

// Apply classifies and persists a batch of candidates inside the caller's
// transaction. The batch may mix entity types; groups are processed
// independently, order within a group is preserved. All mutations become
// visible together when the caller commits, or not at all.
func (s *Store) Apply(ctx context.Context, q backend.Querier, candidates []*schema.Record) error {
	groups, order := partition(candidates)
	for _, et := range order {
		if err := s.applyGroup(ctx, q, et, groups[et]); err != nil {
			return err
		}
	}
	return nil
}

// partition splits a batch by entity type, keeping input order inside each
// group and the order of first appearance across groups.
func partition(candidates []*schema.Record) (map[*schema.EntityType][]*schema.Record, []*schema.EntityType) {
	groups := make(map[*schema.EntityType][]*schema.Record)
	var order []*schema.EntityType
	for _, rec := range candidates {
		if _, ok := groups[rec.Type]; !ok {
			order = append(order, rec.Type)
		}
		groups[rec.Type] = append(groups[rec.Type], rec)
	}
	return groups, order
}

// currentRow is the revision target for one identifier: the persisted row
// with a null expiry date.
type currentRow struct {
	id      int64
	version int
}

func (s *Store) applyGroup(ctx context.Context, q backend.Querier, et *schema.EntityType, group []*schema.Record) error {
	idents := distinctIdentifiers(group)
	if len(idents) == 0 {
		return nil
	}

	existing, err := s.fetchExisting(ctx, q, et, idents)
	if err != nil {
		return err
	}
	current, err := s.fetchCurrent(ctx, q, et, idents)
	if err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	for _, cand := range group {
		ident := cand.Identifier()

		if matchesAny(existing[ident], cand) {
			s.emit(Event{Kind: EventDuplicate, Table: et.Table, Identifier: ident})
			continue
		}

		if cur, ok := current[ident]; ok {
			if err := s.expire(ctx, q, et, cur.id, yesterday); err != nil {
				return err
			}
			cand.VersionNumber = cur.version + 1
		} else {
			cand.VersionNumber = 1
		}
		cand.EffectiveDate = today
		cand.ExpiryDate = nil

		if err := s.insert(ctx, q, et, cand); err != nil {
			return err
		}

		// Later candidates in the batch chain through the row just written.
		current[ident] = currentRow{id: cand.ID, version: cand.VersionNumber}
		existing[ident] = append(existing[ident], cand)

		kind := EventFirstVersion
		if cand.VersionNumber > 1 {
			kind = EventRevision
		}
		s.emit(Event{Kind: kind, Table: et.Table, Identifier: ident, Version: cand.VersionNumber})
	}

	return nil
}

func distinctIdentifiers(group []*schema.Record) []any {
	seen := make(map[any]bool, len(group))
	var idents []any
	for _, rec := range group {
		ident := rec.Identifier()
		if !seen[ident] {
			seen[ident] = true
			idents = append(idents, ident)
		}
	}
	return idents
}

// matchesAny reports whether the candidate duplicates any persisted record
// sharing its identifier: identical values on every declared column.
func matchesAny(persisted []*schema.Record, cand *schema.Record) bool {
	for _, p := range persisted {
		if p.EqualValues(cand) {
			return true
		}
	}
	return false
}

// fetchExisting loads every persisted version (current and historical) for
// the identifier set, grouped by identifier value, for duplicate detection.
func (s *Store) fetchExisting(ctx context.Context, q backend.Querier, et *schema.EntityType, idents []any) (map[any][]*schema.Record, error) {
	d := s.dialect
	names := et.ColumnNames()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteIdentifier(n)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		strings.Join(quoted, ", "),
		d.QuoteIdentifier(et.Table),
		d.QuoteIdentifier(et.Identifier),
		placeholders(d, 1, len(idents)))

	rows, err := q.QueryContext(ctx, query, idents...)
	if err != nil {
		return nil, fmt.Errorf("%w: query existing versions of %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	defer rows.Close()

	result := make(map[any][]*schema.Record)
	for rows.Next() {
		raw := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan existing version of %q: %v", apperrors.ErrBackend, et.Table, err)
		}

		rec := schema.NewRecord(et)
		for i, name := range names {
			if err := rec.Set(name, raw[i]); err != nil {
				return nil, fmt.Errorf("%w: read back %q: %v", apperrors.ErrBackend, et.Table, err)
			}
		}
		ident := rec.Identifier()
		result[ident] = append(result[ident], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate existing versions of %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	return result, nil
}

// fetchCurrent loads the current version per identifier, locking the rows
// where the dialect supports it so concurrent revisions of the same
// identifier serialize on the backend.
func (s *Store) fetchCurrent(ctx context.Context, q backend.Querier, et *schema.EntityType, idents []any) (map[any]currentRow, error) {
	d := s.dialect

	identCol, _ := et.Column(et.Identifier)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, %s, %s FROM %s",
		d.QuoteIdentifier(schema.ColID),
		d.QuoteIdentifier(schema.ColVersionNumber),
		d.QuoteIdentifier(et.Identifier),
		d.QuoteIdentifier(et.Table))
	if hint := d.LockHint(); hint != "" {
		b.WriteString(" " + hint)
	}
	fmt.Fprintf(&b, " WHERE %s IN (%s) AND %s IS NULL",
		d.QuoteIdentifier(et.Identifier),
		placeholders(d, 1, len(idents)),
		d.QuoteIdentifier(schema.ColExpiryDate))
	if suffix := d.LockSuffix(); suffix != "" {
		b.WriteString(" " + suffix)
	}

	rows, err := q.QueryContext(ctx, b.String(), idents...)
	if err != nil {
		return nil, fmt.Errorf("%w: query current versions of %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	defer rows.Close()

	result := make(map[any]currentRow)
	for rows.Next() {
		var id, version int64
		var rawIdent any
		if err := rows.Scan(&id, &version, &rawIdent); err != nil {
			return nil, fmt.Errorf("%w: scan current version of %q: %v", apperrors.ErrBackend, et.Table, err)
		}
		ident, err := schema.Coerce(identCol, rawIdent)
		if err != nil {
			return nil, fmt.Errorf("%w: identifier of %q: %v", apperrors.ErrBackend, et.Table, err)
		}
		if _, dup := result[ident]; dup {
			return nil, fmt.Errorf("%w: table %q has more than one current version for identifier %v",
				apperrors.ErrClassification, et.Table, ident)
		}
		result[ident] = currentRow{id: id, version: int(version)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate current versions of %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	return result, nil
}

// expire closes the current version. The expiry-is-null guard catches rows
// revised underneath us despite the locking read.
func (s *Store) expire(ctx context.Context, q backend.Querier, et *schema.EntityType, id int64, expiry time.Time) error {
	d := s.dialect
	query := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s AND %s IS NULL",
		d.QuoteIdentifier(et.Table),
		d.QuoteIdentifier(schema.ColExpiryDate), d.Placeholder(1),
		d.QuoteIdentifier(schema.ColID), d.Placeholder(2),
		d.QuoteIdentifier(schema.ColExpiryDate))

	res, err := q.ExecContext(ctx, query, expiry, id)
	if err != nil {
		return fmt.Errorf("%w: expire version %d of %q: %v", apperrors.ErrBackend, id, et.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: expire version %d of %q: %v", apperrors.ErrBackend, id, et.Table, err)
	}
	if affected != 1 {
		return fmt.Errorf("%w: table %q row %d was not current at expiry time", apperrors.ErrClassification, et.Table, id)
	}
	return nil
}

func (s *Store) insert(ctx context.Context, q backend.Querier, et *schema.EntityType, rec *schema.Record) error {
	d := s.dialect

	columns := append(et.ColumnNames(), schema.ColVersionNumber, schema.ColEffectiveDate)
	args := make([]any, 0, len(columns))
	for _, name := range et.ColumnNames() {
		args = append(args, rec.Get(name))
	}
	args = append(args, rec.VersionNumber, rec.EffectiveDate)

	query, returning := d.InsertSQL(et.Table, columns)
	if returning {
		if err := q.QueryRowContext(ctx, query, args...).Scan(&rec.ID); err != nil {
			return fmt.Errorf("%w: insert into %q: %v", apperrors.ErrBackend, et.Table, err)
		}
		return nil
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: insert into %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: insert into %q: %v", apperrors.ErrBackend, et.Table, err)
	}
	rec.ID = id
	return nil
}

func (s *Store) emit(ev Event) {
	s.logger.Info(string(ev.Kind),
		zap.String("table", ev.Table),
		zap.Any("identifier", ev.Identifier),
		zap.Int("version", ev.Version))
	for _, sink := range s.sinks {
		sink.Publish(ev)
	}
}

func placeholders(d backend.Dialect, start, count int) string {
	marks := make([]string, count)
	for i := 0; i < count; i++ {
		marks[i] = d.Placeholder(start + i)
	}
	return strings.Join(marks, ", ")
}
