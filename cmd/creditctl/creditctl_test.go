package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreditFox/app/models"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error                  { return m.Called().Error(0) }
func (m *mockMigrator) Steps(n int) error          { return m.Called(n).Error(0) }
func (m *mockMigrator) Migrate(version uint) error { return m.Called(version).Error(0) }
func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func TestMigrateUp(t *testing.T) {
	m := &mockMigrator{}
	m.On("Up").Return(migrate.ErrNoChange).Once()
	m.On("Up").Return(nil).Once()

	var out bytes.Buffer
	require.NoError(t, migrateUp(m, &out))
	require.NoError(t, migrateUp(m, &out))
	assert.Contains(t, out.String(), "up to date")
	assert.Contains(t, out.String(), "migrations applied")
	m.AssertExpectations(t)
}

func TestMigrateDownAndGoto(t *testing.T) {
	m := &mockMigrator{}
	m.On("Steps", -1).Return(nil)
	m.On("Migrate", uint(1)).Return(errors.New("dirty database"))

	var out bytes.Buffer
	require.NoError(t, migrateDown(m, &out))
	assert.Error(t, migrateGoto(m, &out, 1))
	m.AssertExpectations(t)
}

func TestMigrateStatus(t *testing.T) {
	m := &mockMigrator{}
	m.On("Version").Return(uint(0), false, migrate.ErrNilVersion).Once()
	m.On("Version").Return(uint(1), true, nil).Once()

	var out bytes.Buffer
	require.NoError(t, migrateStatus(m, &out))
	require.NoError(t, migrateStatus(m, &out))
	assert.Contains(t, out.String(), "no migrations applied yet")
	assert.Contains(t, out.String(), "current version: 1 (dirty)")
}

func TestGotoRejectsInvalidVersion(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"migrate", "goto", "latest"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

type fakeKeyRepo struct {
	created []*models.APIKey
	revoked int64
	err     error
}

func (f *fakeKeyRepo) Create(_ context.Context, key *models.APIKey) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, key)
	return nil
}

func (f *fakeKeyRepo) GetActiveByHash(context.Context, string) (*models.APIKey, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeKeyRepo) TouchLastUsed(context.Context, uint, time.Time) error { return nil }

func (f *fakeKeyRepo) RevokeByPrefix(context.Context, string) (int64, error) {
	return f.revoked, f.err
}

func (f *fakeKeyRepo) ListBySubject(context.Context, string) ([]models.APIKey, error) {
	return nil, nil
}

func TestIssueAPIKey(t *testing.T) {
	repo := &fakeKeyRepo{}
	var out bytes.Buffer

	require.NoError(t, issueAPIKey(context.Background(), repo, &out, "user_1"))
	require.Len(t, repo.created, 1)
	key := repo.created[0]
	assert.Equal(t, "user_1", key.SubjectID)
	assert.Contains(t, out.String(), key.Prefix)
	assert.NotContains(t, out.String(), key.Hash)

	assert.Error(t, issueAPIKey(context.Background(), repo, &out, " "))
}

func TestRevokeAPIKey(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, revokeAPIKey(context.Background(), &fakeKeyRepo{revoked: 1}, &out, "cfx_abc"))
	assert.Contains(t, out.String(), "revoked 1 key(s)")

	assert.Error(t, revokeAPIKey(context.Background(), &fakeKeyRepo{}, &out, "cfx_abc"))
}
