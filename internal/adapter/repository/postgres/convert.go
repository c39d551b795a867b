package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/campuscoins/coinledger/internal/infrastructure/postgres/generated"
	"github.com/campuscoins/coinledger/internal/usecase"
)

func txQueries(tx usecase.Transaction) *generated.Queries {
	return generated.New(tx.(*Tx).PgxTx())
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return timeToPgTimestamptz(*t)
}

func dateToPg(d *time.Time) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}

	return pgtype.Date{Time: *d, Valid: true}
}

func pgDateToTime(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}

	y, m, day := d.Time.Date()
	t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)

	return &t
}

func textToPg(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}

	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToString(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}

	s := t.String

	return &s
}

func kindToPg(kind string) pgtype.Text {
	if kind == "" {
		return pgtype.Text{}
	}

	return pgtype.Text{String: kind, Valid: true}
}
