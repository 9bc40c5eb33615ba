//go:build e2e

package sqldb_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/driver/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Account struct {
	Id       int64
	Owner    string
	Balance  float64
	Nickname sql.NullString
	Created  time.Time
	Changes  *orm.ChangeSet
}

func (a *Account) TableName() string { return "accounts" }

var errOverdrawn = errors.New("余额不足")

func (a *Account) Validate(ctx context.Context) error {
	if a.Balance < 0 {
		return errOverdrawn
	}
	return nil
}

func (a *Account) WillCreate(ctx context.Context) {
	a.Created = time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
}

func openTestDB(t *testing.T, name string, opts ...sqldb.Option) *orm.DB {
	conn, err := sqldb.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared", opts...)
	require.NoError(t, err)
	db := orm.MustNewDB(conn)
	ctx := context.Background()
	require.NoError(t, async.Wait(func(done async.Callback) { db.Open(ctx, done) }))
	t.Cleanup(db.Close)

	require.NoError(t, async.Wait(func(done async.Callback) {
		db.Execute(ctx, orm.NewQuery(`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner TEXT NOT NULL,
			balance REAL NOT NULL DEFAULT 0,
			nickname TEXT,
			created DATETIME
		)`), func(_ *orm.Rows, err error) { done(err) })
	}))
	return db
}

func TestSQLite_Persistence(t *testing.T) {
	db := openTestDB(t, "persistence", sqldb.WithStmtCache(8))
	ctx := context.Background()

	a := &Account{Owner: "Tom", Balance: 10, Changes: orm.NewChangeSet()}
	require.NoError(t, async.Wait(func(done async.Callback) { db.Save(ctx, a, done) }))
	assert.Equal(t, int64(1), a.Id)
	assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), a.Created.UTC())
	require.NotNil(t, a.Changes)

	a.Balance = 25
	a.Nickname = sql.NullString{String: "tommy", Valid: true}
	require.NoError(t, db.SetNeedsSave(a, orm.C("balance"), orm.C("nickname")))
	require.NoError(t, async.Wait(func(done async.Callback) { db.Save(ctx, a, done) }))

	var got *Account
	require.NoError(t, async.Wait(func(done async.Callback) {
		orm.Get[Account](ctx, db, a.Id, func(acc *Account, err error) {
			got = acc
			done(err)
		})
	}))
	assert.Equal(t, 25.0, got.Balance)
	assert.Equal(t, "tommy", got.Nickname.String)

	a.Balance = -1
	require.NoError(t, db.SetNeedsSave(a, orm.C("balance")))
	err := async.Wait(func(done async.Callback) { db.Save(ctx, a, done) })
	assert.Equal(t, errOverdrawn, err)

	require.NoError(t, async.Wait(func(done async.Callback) { db.Delete(ctx, a, done) }))
	err = async.Wait(func(done async.Callback) { db.Refresh(ctx, a, done) })
	assert.ErrorIs(t, err, orm.ErrNoRows)
}

func TestSQLite_Transaction(t *testing.T) {
	db := openTestDB(t, "transaction")
	ctx := context.Background()

	err := async.Wait(func(done async.Callback) {
		db.Transaction(ctx, func(next async.Callback) {
			async.Series([]async.Task{
				func(next async.Callback) { db.Create(ctx, &Account{Owner: "Tom", Balance: 1}, next) },
				func(next async.Callback) {
					// savepoint 中的失败不影响外层
					spErr := orm.WithSavePoint(ctx, db, orm.NewSavePointName(), func() error {
						return async.Wait(func(done async.Callback) {
							db.Create(ctx, &Account{Owner: "Jerry", Balance: 2}, done)
						})
					})
					assert.NoError(t, spErr)
					next(nil)
				},
				func(next async.Callback) { db.Create(ctx, &Account{Owner: "Bad", Balance: -1}, next) },
			}, next)
		}, done)
	})
	assert.Equal(t, errOverdrawn, err)

	var accounts []*Account
	require.NoError(t, async.Wait(func(done async.Callback) {
		orm.FindAll[Account](ctx, db, nil, func(as []*Account, err error) {
			accounts = as
			done(err)
		})
	}))
	// 整个事务都回滚了
	assert.Empty(t, accounts)

	require.NoError(t, async.Wait(func(done async.Callback) {
		db.Transaction(ctx, func(next async.Callback) {
			db.Create(ctx, &Account{Owner: "Tom", Balance: 1}, next)
		}, done)
	}))
	require.NoError(t, async.Wait(func(done async.Callback) {
		sel := orm.NewSelect("accounts").
			Columns(orm.C("id"), orm.C("owner"), orm.C("balance"), orm.C("nickname"), orm.C("created")).
			Where(orm.C("owner").In("Tom", "Jerry"), orm.C("nickname").EQ(nil)).
			OrderBy(orm.Desc(orm.C("id")))
		orm.FindAll[Account](ctx, db, sel, func(as []*Account, err error) {
			accounts = as
			done(err)
		})
	}))
	require.Len(t, accounts, 1)
	assert.Equal(t, "Tom", accounts[0].Owner)
}
