package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/dbx"
)

// storeError passes through the sentinels a repository is allowed to
// return and reports everything else as common.ErrStoreUnavailable.
func storeError(err error) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrDuplicateEmail) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}

// inTx runs fn in a transaction on db. A nil db means the in-memory store,
// which has no transactions; fn then runs directly with a nil handle.
// Errors from fn come back unchanged, begin and commit failures as
// common.ErrStoreUnavailable.
func inTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}

	var fnErr error
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storeError(err)
	}
	return err
}
