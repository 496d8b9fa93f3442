package catalogimport

import (
	"context"
	"strings"
	"testing"

	"bookreview/internal/logging"
	"bookreview/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InsertsAndSkipsExisting(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.SeedBook(t, db, "imp-0002", "Already Here", "Someone", 1990)
	_, err := db.Exec(ctx, `DELETE FROM books WHERE isbn IN ('imp-0001', 'imp-0003')`)
	require.NoError(t, err)

	input := "isbn,title,author,year\n" +
		"imp-0001,First,Author One,2001\n" +
		"imp-0002,Second,Author Two,2002\n" +
		"imp-0003,Third,Author Three,2003\n"

	res, err := NewService(NewPostgresRepo(db), logging.Discard()).Run(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Result{Rows: 3, Inserted: 2, Skipped: 1}, res)

	var title string
	require.NoError(t, db.QueryRow(ctx, `SELECT title FROM books WHERE isbn = 'imp-0002'`).Scan(&title))
	assert.Equal(t, "Already Here", title)
	assert.Equal(t, 1, testutil.CountRows(t, db, `SELECT COUNT(*) FROM books WHERE isbn = 'imp-0003'`))
}

func TestInsertBooks_RollsBackOnFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, err := db.Exec(ctx, `DELETE FROM books WHERE isbn = 'imp-rb-01'`)
	require.NoError(t, err)

	rows := []Row{
		{Line: 2, ISBN: "imp-rb-01", Title: "Fine", Author: "A", Year: 2000},
		{Line: 3, ISBN: "imp-rb-02-isbn-too-long", Title: "Too long", Author: "B", Year: 2000},
	}
	_, err = NewPostgresRepo(db).InsertBooks(ctx, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	assert.Equal(t, 0, testutil.CountRows(t, db, `SELECT COUNT(*) FROM books WHERE isbn = 'imp-rb-01'`))
}
