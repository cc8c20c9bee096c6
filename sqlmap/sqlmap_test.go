package sqlmap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noaland/mirror"
)

type user struct {
	ID   int64
	Name string `db:"full_name"`
	Age  int
	Note string `db:"-"`
}

var userDesc = mirror.MustDescribe[user]("ID", "Name", "Age", "Note")

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "full_name", "age"}, Columns(userDesc.Info()))
}

func TestColumnName(t *testing.T) {
	fields := userDesc.Fields()
	assert.Equal(t, "id", ColumnName(fields[0]))
	assert.Equal(t, "full_name", ColumnName(fields[1]), "db tag overrides the derived name")
	assert.Equal(t, "age", ColumnName(fields[2]))
	assert.Equal(t, "", ColumnName(fields[3]), `db:"-" excludes the field`)
}

func TestSelect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "age"}).
			AddRow(1, "Ada", 38).
			AddRow(2, "Grace", 45))

	users, err := Select(context.Background(), db, userDesc, "SELECT id, full_name, age FROM users")
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, user{ID: 1, Name: "Ada", Age: 38}, users[0])
	assert.Equal(t, user{ID: 2, Name: "Grace", Age: 45}, users[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectColumnSubset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"full_name"}).AddRow("Ada"))

	users, err := Select(context.Background(), db, userDesc, "SELECT full_name FROM users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user{Name: "Ada"}, users[0], "unselected fields stay zero")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectUnknownColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "ada@example.com"))

	_, err = Select(context.Background(), db, userDesc, "SELECT id, email FROM users")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), "email")
}

func TestGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "age"}).AddRow(1, "Ada", 38))

	u, err := Get(context.Background(), db, userDesc, "SELECT id, full_name, age FROM users WHERE id = ?", int64(1))
	require.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "Ada", Age: 38}, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "age"}))

	_, err = Get(context.Background(), db, userDesc, "SELECT id, full_name, age FROM users WHERE id = ?", int64(99))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsert(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users (id, full_name, age) VALUES (?, ?, ?)").
		WithArgs(int64(3), "Edsger", 72).
		WillReturnResult(sqlmock.NewResult(3, 1))

	u := user{ID: 3, Name: "Edsger", Age: 72, Note: "not persisted"}
	require.NoError(t, Insert(context.Background(), db, userDesc, "users", &u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertNoColumns(t *testing.T) {
	type hidden struct {
		Secret string `db:"-"`
	}
	d := mirror.MustDescribe[hidden]("Secret")

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = Insert(context.Background(), db, d, "hidden", &hidden{Secret: "x"})
	assert.ErrorIs(t, err, ErrNoColumns)
}
