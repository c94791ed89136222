package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// document is the single table backing every collection. Bodies are stored
// as JSON text so field queries go through sqlite's json_extract/json_each.
type document struct {
	Collection string    `gorm:"primaryKey;column:collection"`
	DocID      string    `gorm:"primaryKey;column:doc_id"`
	Data       string    `gorm:"column:data"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (document) TableName() string { return "documents" }

// SQLite is the embedded Store implementation
type SQLite struct {
	db  *gorm.DB
	hub *hub
}

var _ Store = (*SQLite)(nil)

// Open opens (or creates) the document store at path and runs migrations.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &SQLite{db: db}
	s.hub = newHub(s)
	return s, nil
}

// Close detaches all listeners and closes the underlying connection.
func (s *SQLite) Close() error {
	s.hub.closeAll()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) Get(ctx context.Context, collection, id string) (Doc, error) {
	var row document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Doc{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Doc{}, wrapDBError(err)
	}
	return Doc{ID: row.DocID, Data: []byte(row.Data)}, nil
}

func (s *SQLite) Query(ctx context.Context, collection string, f Filter) ([]Doc, error) {
	q := s.db.WithContext(ctx).Model(&document{}).Where("collection = ?", collection)

	switch {
	case f.DocID != "":
		q = q.Where("doc_id = ?", f.DocID)
	case f.Op == OpArrayContains:
		q = q.Where(
			"EXISTS (SELECT 1 FROM json_each(documents.data, ?) WHERE json_each.value = ?)",
			"$."+f.Field, f.Value,
		)
	default:
		q = q.Where("json_extract(documents.data, ?) = ?", "$."+f.Field, f.Value)
	}

	var rows []document
	if err := q.Order("doc_id").Find(&rows).Error; err != nil {
		return nil, wrapDBError(err)
	}
	return toDocs(rows), nil
}

func (s *SQLite) QueryIn(ctx context.Context, collection string, ids []string) ([]Doc, error) {
	if len(ids) > ChunkLimit {
		return nil, fmt.Errorf("queryIn accepts at most %d ids, got %d", ChunkLimit, len(ids))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", collection, ids).
		Find(&rows).Error
	if err != nil {
		return nil, wrapDBError(err)
	}
	return toDocs(rows), nil
}

func (s *SQLite) Set(ctx context.Context, collection, id string, v any) error {
	row, err := toRow(collection, id, v)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return wrapDBError(err)
	}
	s.hub.notify(collection)
	return nil
}

func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&document{}).Error
	if err != nil {
		return wrapDBError(err)
	}
	s.hub.notify(collection)
	return nil
}

// Transaction runs fn atomically. Listeners are notified once per touched
// collection, after the commit.
func (s *SQLite) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	touched := map[string]struct{}{}
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&sqliteTx{db: gtx, touched: touched})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || IsCancellation(err) {
			return err
		}
		return wrapDBError(err)
	}
	s.hub.notifyAll(touched)
	return nil
}

// BatchWrite applies all writes in one commit. Unlike Transaction it carries
// no reads, so it is not isolated from anything read before it was issued.
func (s *SQLite) BatchWrite(ctx context.Context, writes []Write) error {
	touched := map[string]struct{}{}
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		for _, w := range writes {
			touched[w.Collection] = struct{}{}
			switch w.Kind {
			case WriteSet:
				row, err := toRow(w.Collection, w.ID, w.Value)
				if err != nil {
					return err
				}
				if err := gtx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
					return err
				}
			case WriteDelete:
				err := gtx.Where("collection = ? AND doc_id = ?", w.Collection, w.ID).
					Delete(&document{}).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return wrapDBError(err)
	}
	s.hub.notifyAll(touched)
	return nil
}

func (s *SQLite) Listen(collection string, f Filter, onChange func(Snapshot), onError func(error)) (Subscription, error) {
	return s.hub.subscribe(collection, f, onChange, onError), nil
}

// sqliteTx adapts a gorm transaction to the Tx contract and records the
// collections it wrote to, so listeners fire only after commit.
type sqliteTx struct {
	db      *gorm.DB
	touched map[string]struct{}
}

func (t *sqliteTx) Get(collection, id string) (Doc, error) {
	var row document
	err := t.db.Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Doc{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Doc{}, wrapDBError(err)
	}
	return Doc{ID: row.DocID, Data: []byte(row.Data)}, nil
}

func (t *sqliteTx) Set(collection, id string, v any) error {
	row, err := toRow(collection, id, v)
	if err != nil {
		return err
	}
	t.touched[collection] = struct{}{}
	return t.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (t *sqliteTx) Delete(collection, id string) error {
	t.touched[collection] = struct{}{}
	return t.db.Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&document{}).Error
}

func toRow(collection, id string, v any) (document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return document{}, fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	return document{
		Collection: collection,
		DocID:      id,
		Data:       string(data),
		UpdatedAt:  time.Now(),
	}, nil
}

func toDocs(rows []document) []Doc {
	docs := make([]Doc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Doc{ID: row.DocID, Data: []byte(row.Data)})
	}
	return docs
}

func wrapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsCancellation(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
