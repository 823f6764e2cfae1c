package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"tour_map/internal/domain"
)

func valStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Repo stores the search log.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Record(ctx context.Context, e domain.SearchLogEntry) error {
	_, err := r.db.ExecContext(ctx, insertSearchSQL,
		valStr(e.Keyword),
		e.Query,
		e.Status,
		e.ResultBytes,
		e.Duration.Milliseconds(),
	)
	return err
}

// TopKeywords returns the most searched keywords since the given time.
func (r *Repo) TopKeywords(ctx context.Context, since time.Time, limit int) ([]domain.KeywordCount, error) {
	rows, err := r.db.QueryContext(ctx, topKeywordsSQL, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.KeywordCount
	for rows.Next() {
		var kc domain.KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

// Purge drops entries older than before and reports how many went.
func (r *Repo) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeSearchesSQL, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
