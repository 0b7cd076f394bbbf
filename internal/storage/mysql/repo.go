package mysql

import (
	"context"
	"database/sql"
	"strings"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func present(p any) int {
	switch v := p.(type) {
	case *bool:
		if v != nil {
			return 1
		}
	case *string:
		if v != nil {
			return 1
		}
	}
	return 0
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Upsert applies a partial moderation update atomically and returns the
// resulting record with its server-assigned updated_at.
func (r *Repo) Upsert(ctx context.Context, u domain.ModerationUpdate) (domain.ModerationRecord, error) {
	if err := u.Validate(); err != nil {
		return domain.ModerationRecord{}, err
	}
	_, err := r.db.ExecContext(ctx, upsertSelectionSQL,
		u.ReviewID,
		u.Source,
		valStr(u.ListingID),
		valStr(u.ListingName),
		valBool(u.Approved),
		valBool(u.DisplayOnWebsite),
		valStr(u.Notes),
		present(u.Approved),
		present(u.DisplayOnWebsite),
		present(u.Notes),
	)
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	return r.get(ctx, u.ReviewID, u.Source)
}

func (r *Repo) get(ctx context.Context, reviewID, source string) (domain.ModerationRecord, error) {
	row := r.db.QueryRowContext(ctx, getSelectionSQL, reviewID, source)
	return scanRecord(row)
}

// FindAll returns records matching the filter, newest edits first.
func (r *Repo) FindAll(ctx context.Context, f domain.ModerationFilter) ([]domain.ModerationRecord, error) {
	var (
		conds []string
		args  []any
	)
	if f.Approved != nil {
		conds = append(conds, "approved = ?")
		args = append(args, *f.Approved)
	}
	if f.DisplayOnWebsite != nil {
		conds = append(conds, "display_on_website = ?")
		args = append(args, *f.DisplayOnWebsite)
	}
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}

	q := findAllSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += findAllOrderSQL

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ModerationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, reviewID, source string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteSelectionSQL, reviewID, source)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (domain.ModerationRecord, error) {
	var (
		rec         domain.ModerationRecord
		listingID   sql.NullString
		listingName sql.NullString
		notes       sql.NullString
	)
	err := row.Scan(
		&rec.ReviewID,
		&rec.Source,
		&listingID,
		&listingName,
		&rec.Approved,
		&rec.DisplayOnWebsite,
		&notes,
		&rec.UpdatedAt,
	)
	if err != nil {
		return domain.ModerationRecord{}, err
	}
	if listingID.Valid {
		rec.ListingID = &listingID.String
	}
	if listingName.Valid {
		rec.ListingName = &listingName.String
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	return rec, nil
}
