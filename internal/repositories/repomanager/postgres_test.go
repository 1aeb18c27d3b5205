package repomanager

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bankcore/internal/repositories/accounts"
	"github.com/dmitrijs2005/bankcore/internal/repositories/authevents"
	"github.com/dmitrijs2005/bankcore/internal/repositories/credentials"
	"github.com/dmitrijs2005/bankcore/internal/repositories/refreshtokens"
	"github.com/dmitrijs2005/bankcore/internal/repositories/transactions"
	"github.com/dmitrijs2005/bankcore/internal/repositories/users"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	m := NewPostgresRepositoryManager()
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if c := m.Credentials(db); c == nil {
		t.Fatal("Credentials() nil")
	}
	if a := m.Accounts(db); a == nil {
		t.Fatal("Accounts() nil")
	}
	if tr := m.Transactions(db); tr == nil {
		t.Fatal("Transactions() nil")
	}
	if ev := m.AuthEvents(db); ev == nil {
		t.Fatal("AuthEvents() nil")
	}
	if rt := m.RefreshTokens(db); rt == nil {
		t.Fatal("RefreshTokens() nil")
	}

	var _ users.Repository = m.Users(db)
	var _ credentials.Repository = m.Credentials(db)
	var _ accounts.Repository = m.Accounts(db)
	var _ transactions.Repository = m.Transactions(db)
	var _ authevents.Repository = m.AuthEvents(db)
	var _ refreshtokens.Repository = m.RefreshTokens(db)
}
