package sitecontent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type documentModel struct {
	bun.BaseModel `bun:"table:site_content,alias:sc"`

	Key       string    `bun:"doc_key,pk"`
	Document  string    `bun:"document,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunRepository persists site content documents in the site_content table.
type BunRepository struct {
	db  *bun.DB
	now func() time.Time
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, now: time.Now}
}

// EnsureSchema creates the site_content table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if r.db == nil {
		return nil, errors.New("sitecontent: bun repository requires a database")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	var model documentModel
	err := r.db.NewSelect().Model(&model).Where("doc_key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return json.RawMessage(model.Document), nil
}

// Upsert writes doc under key, replacing any earlier document.
func (r *BunRepository) Upsert(ctx context.Context, key string, doc json.RawMessage) error {
	if r.db == nil {
		return errors.New("sitecontent: bun repository requires a database")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}
	model := &documentModel{
		Key:       key,
		Document:  string(doc),
		UpdatedAt: r.now().UTC(),
	}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (doc_key) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
