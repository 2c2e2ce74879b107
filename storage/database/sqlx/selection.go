package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/selection"
)

type selectionRepository struct {
	db *sqlx.DB
}

var _ selection.Repository = (*selectionRepository)(nil)

func NewSelectionRepository(db *sql.DB, driverName string) *selectionRepository {
	return &selectionRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo *selectionRepository) GetSelection(ctx context.Context, userID string) (selection.Selection, error) {
	var sel selection.Selection
	err := repo.db.GetContext(ctx, &sel, `SELECT * FROM selection WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return selection.Selection{}, selection.ErrNotFound
		}
		return selection.Selection{}, wrapErr(err, "getting selection")
	}
	return sel, nil
}

func (repo *selectionRepository) UpsertSelection(ctx context.Context, sel selection.Selection) (selection.Selection, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO selection (user_id, role, institute_id, class_id, subject_id, child_id, organization_id, updated_at)
		VALUES (:user_id, :role, :institute_id, :class_id, :subject_id, :child_id, :organization_id, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET role            = EXCLUDED.role,
		    institute_id    = EXCLUDED.institute_id,
		    class_id        = EXCLUDED.class_id,
		    subject_id      = EXCLUDED.subject_id,
		    child_id        = EXCLUDED.child_id,
		    organization_id = EXCLUDED.organization_id,
		    updated_at      = EXCLUDED.updated_at`,
		sel,
	)
	if err != nil {
		return selection.Selection{}, wrapErr(err, "upserting selection")
	}
	return sel, nil
}

func (repo *selectionRepository) DeleteSelection(ctx context.Context, userID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM selection WHERE user_id = $1`, userID)
	if err != nil {
		return wrapErr(err, "deleting selection")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return selection.ErrNotFound
	}
	return nil
}

// wrapErr classifies storage failures: a lost connection cannot be recovered
// from here and must bring the server down gracefully.
func wrapErr(err error, msg string) error {
	if err == driver.ErrBadConn {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
