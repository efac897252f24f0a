// Package kv is the client's persistent key-value storage: string keys to
// string values in the local SQLite "kv" table.
//
// A missing key is not an error: Get returns ("", false, nil). Delete and
// Clear are idempotent. The SQLite implementation runs on a dbx.DBTX, so the
// same repository type works on *sql.DB and inside dbx.WithTx.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := kv.NewSQLiteRepository(tx)
//	    if err := repo.Set(ctx, "auth_token", token); err != nil {
//	        return err
//	    }
//	    return repo.Set(ctx, "token_expiration", exp)
//	})
package kv
