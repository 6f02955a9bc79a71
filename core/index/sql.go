package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"datadiff/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableName is the table owned by a SQL index.
const TableName = "data_store"

// entryModel is the row layout of the index table. Both sides share the table
// and are told apart by s_ab.
//
// Keys and fingerprints are binary columns so that lookups and joins compare
// bytes, never a case or accent folding collation. Rows are addressed by the
// SHA-256 digest of the key, which keeps the primary key short for any key
// length.
type entryModel struct {
	Side        string `gorm:"column:s_ab;primaryKey;size:1"`
	Hash        []byte `gorm:"column:s_hash;primaryKey;size:32"`
	Key         []byte `gorm:"column:s_key;not null"`
	Fingerprint []byte `gorm:"column:s_value;not null"`
	Data        []byte `gorm:"column:s_data"`
	Seq         int64  `gorm:"column:s_sort;index;not null"`
}

func (entryModel) TableName() string { return TableName }

var requiredColumns = []string{"s_ab", "s_hash", "s_key", "s_value", "s_data", "s_sort"}

func keyHash(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// SQL is a KeyedIndex stored in a relational database through gorm.
type SQL struct {
	db    *gorm.DB
	codec *RowCodec
	owned bool
}

// SQLOption configures a SQL index.
type SQLOption func(*SQL)

// WithOwnedDB makes Close release the connection pool of the database.
func WithOwnedDB() SQLOption {
	return func(s *SQL) { s.owned = true }
}

// NewSQL prepares the index table on db. Any previous contents of the table
// are dropped so every index starts empty.
func NewSQL(ctx context.Context, db *gorm.DB, opts ...SQLOption) (*SQL, error) {
	codec, err := NewRowCodec()
	if err != nil {
		return nil, err
	}
	s := &SQL{db: db, codec: codec}
	for _, opt := range opts {
		opt(s)
	}

	tx := db.WithContext(ctx)
	if err := tx.Migrator().DropTable(&entryModel{}); err != nil {
		return nil, fmt.Errorf("drop index table: %w", err)
	}
	if err := tx.AutoMigrate(&entryModel{}); err != nil {
		return nil, fmt.Errorf("create index table: %w", err)
	}
	missing, err := database.MissingColumns(tx, TableName, requiredColumns...)
	if err != nil {
		return nil, fmt.Errorf("inspect index table: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("index table lacks columns %s", strings.Join(missing, ", "))
	}
	return s, nil
}

func (s *SQL) Get(ctx context.Context, side Side, key string) (Entry, bool, error) {
	var m entryModel
	err := s.db.WithContext(ctx).
		Where("s_ab = ? AND s_hash = ?", string(side), keyHash(key)).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %s/%q: %w", side, key, err)
	}
	e, err := s.toEntry(string(m.Key), string(m.Fingerprint), m.Data, m.Seq)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *SQL) Put(ctx context.Context, side Side, e Entry) error {
	data, err := s.codec.Encode(e.Data)
	if err != nil {
		return fmt.Errorf("encode row %q: %w", e.Key, err)
	}
	m := entryModel{
		Side:        string(side),
		Hash:        keyHash(e.Key),
		Key:         []byte(e.Key),
		Fingerprint: []byte(e.Fingerprint),
		Data:        data,
		Seq:         e.Seq,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "s_ab"}, {Name: "s_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"s_value", "s_data", "s_sort"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("put %s/%q: %w", side, e.Key, err)
	}
	return nil
}

func (s *SQL) Count(ctx context.Context, side Side) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entryModel{}).Where("s_ab = ?", string(side)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", side, err)
	}
	return int(n), nil
}

func (s *SQL) Clear(ctx context.Context, side Side) error {
	err := s.db.WithContext(ctx).Where("s_ab = ?", string(side)).Delete(&entryModel{}).Error
	if err != nil {
		return fmt.Errorf("clear %s: %w", side, err)
	}
	return nil
}

func (s *SQL) Scan(ctx context.Context, side Side, fn func(Entry) bool) error {
	rows, err := s.db.WithContext(ctx).Raw(
		"SELECT s_key, s_value, s_data, s_sort FROM "+TableName+" WHERE s_ab = ? ORDER BY s_sort",
		string(side),
	).Rows()
	if err != nil {
		return fmt.Errorf("scan %s: %w", side, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, fp []byte
			data    []byte
			seq     int64
		)
		if err := rows.Scan(&key, &fp, &data, &seq); err != nil {
			return fmt.Errorf("scan %s: %w", side, err)
		}
		e, err := s.toEntry(string(key), string(fp), data, seq)
		if err != nil {
			return err
		}
		if !fn(e) {
			return nil
		}
	}
	return rows.Err()
}

func (s *SQL) Join(ctx context.Context, q JoinQuery, fn func(local Entry, foreign *Entry) bool) error {
	query, args := joinSQL(q)
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return fmt.Errorf("join %s against %s: %w", q.Local, q.Foreign(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key, fp    []byte
			data       []byte
			seq        int64
			foreignFP  []byte
			foreignRaw []byte
			foreignSeq sql.NullInt64
		)
		if err := rows.Scan(&key, &fp, &data, &seq, &foreignFP, &foreignRaw, &foreignSeq); err != nil {
			return fmt.Errorf("join %s against %s: %w", q.Local, q.Foreign(), err)
		}
		local, err := s.toEntry(string(key), string(fp), data, seq)
		if err != nil {
			return err
		}
		var foreign *Entry
		if foreignSeq.Valid {
			f, err := s.toEntry(string(key), string(foreignFP), foreignRaw, foreignSeq.Int64)
			if err != nil {
				return err
			}
			foreign = &f
		}
		if !fn(local, foreign) {
			return nil
		}
	}
	return rows.Err()
}

// Close releases the database when the index owns it.
func (s *SQL) Close() error {
	if !s.owned {
		return nil
	}
	return database.Close(s.db)
}

func (s *SQL) toEntry(key, fp string, data []byte, seq int64) (Entry, error) {
	d, err := s.codec.Decode(data)
	if err != nil {
		return Entry{}, fmt.Errorf("row %q: %w", key, err)
	}
	return Entry{Key: key, Fingerprint: fp, Data: d, Seq: seq}, nil
}

// joinSQL builds the LEFT JOIN used for every set query. The match mask
// becomes a disjunction over the foreign row: absent, same fingerprint or a
// different fingerprint.
func joinSQL(q JoinQuery) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT s1.s_key, s1.s_value, s1.s_data, s1.s_sort, s2.s_value, s2.s_data, s2.s_sort FROM ")
	b.WriteString(TableName)
	b.WriteString(" s1 LEFT JOIN ")
	b.WriteString(TableName)
	b.WriteString(" s2 ON s2.s_ab = ? AND s2.s_hash = s1.s_hash WHERE s1.s_ab = ?")

	var conds []string
	if q.Match&MatchAll != MatchAll {
		if q.Match&MatchAbsent != 0 {
			conds = append(conds, "s2.s_hash IS NULL")
		}
		if q.Match&MatchSame != 0 {
			conds = append(conds, "s2.s_value = s1.s_value")
		}
		if q.Match&MatchChanged != 0 {
			conds = append(conds, "s2.s_value <> s1.s_value")
		}
		if len(conds) == 0 {
			conds = append(conds, "1 = 0")
		}
		b.WriteString(" AND (")
		b.WriteString(strings.Join(conds, " OR "))
		b.WriteString(")")
	}

	b.WriteString(" ORDER BY s1.s_sort")
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), []any{string(q.Foreign()), string(q.Local)}
}
