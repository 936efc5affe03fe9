package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/models"
)

func seedContacts(t *testing.T, db *gorm.DB) (*UserRepo, *ContactRepo, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	users := &UserRepo{DB: db}
	contacts := &ContactRepo{DB: db}

	owner := &models.User{Username: "Owner", Email: "owner@example.com", PasswordHash: "h"}
	other := &models.User{Username: "Other", Email: "other@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	require.NoError(t, contacts.Create(ctx, &models.Contact{
		Name: "Roy", Lastname: "Bebru", Email: "roy@contacts.example",
		Phone: "111", Birthday: time.Date(1990, 6, 10, 0, 0, 0, 0, time.UTC),
		UserID: owner.ID,
	}))
	require.NoError(t, contacts.Create(ctx, &models.Contact{
		Name: "Ann", Lastname: "Smith", Email: "ann@contacts.example",
		UserID: other.ID,
	}))
	return users, contacts, owner, other
}

func TestContactRepo_OwnerScoping(t *testing.T) {
	t.Parallel()

	_, contacts, owner, other := seedContacts(t, initTestDB(t))
	ctx := context.Background()

	mine, err := contacts.GetAll(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Roy", mine[0].Name)

	// Another user's contact is invisible by id no matter the id value.
	theirs, err := contacts.GetAll(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)

	_, err = contacts.GetByID(ctx, owner.ID, theirs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactRepo_Lookups(t *testing.T) {
	t.Parallel()

	_, contacts, owner, _ := seedContacts(t, initTestDB(t))
	ctx := context.Background()

	byName, err := contacts.GetByName(ctx, owner.ID, "ROY")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byLastname, err := contacts.GetByLastname(ctx, owner.ID, "bebru")
	require.NoError(t, err)
	require.Len(t, byLastname, 1)

	byEmail, err := contacts.GetByEmail(ctx, owner.ID, "ROY@contacts.example")
	require.NoError(t, err)
	assert.Equal(t, "Roy", byEmail.Name)

	_, err = contacts.GetByEmail(ctx, owner.ID, "ann@contacts.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactRepo_UpdateDelete(t *testing.T) {
	t.Parallel()

	_, contacts, owner, _ := seedContacts(t, initTestDB(t))
	ctx := context.Background()

	mine, err := contacts.GetAll(ctx, owner.ID)
	require.NoError(t, err)
	id := mine[0].ID

	updated, err := contacts.Update(ctx, owner.ID, &models.Contact{
		ID: id, Name: "Roy", Lastname: "Bebru", Email: "roy@contacts.example",
		Phone: "222", Note: "updated",
		Birthday: time.Date(1990, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "222", updated.Phone)
	assert.Equal(t, "updated", updated.Note)

	_, err = contacts.Update(ctx, owner.ID, &models.Contact{ID: 9999, Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := contacts.Delete(ctx, owner.ID, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.ID)

	_, err = contacts.GetByID(ctx, owner.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
