package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"nuvra_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadColumnNames = []string{
	"id", "name", "email", "phone", "company", "origin", "qualification", "status",
	"value", "notes", "metadata", "product_id", "created_at", "updated_at",
}

func leadRow(rows *pgxmock.Rows, id uuid.UUID, name string, productID *uuid.UUID, metadata string) *pgxmock.Rows {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id, name, name+"@example.com", "", "", "api", "cold", "new",
		float64(0), "", []byte(metadata), productID, now, now)
}

func TestInsertReturnsPersistedLead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	productID := uuid.New()
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(leadRow(pgxmock.NewRows(leadColumnNames), id, "ana", &productID, `{"scoring":{"score":10}}`))

	lead, err := New(mock).Insert(context.Background(), domain.Draft{
		Name:          "ana",
		Email:         "ana@example.com",
		Origin:        "api",
		Qualification: "cold",
		Status:        "new",
		ProductID:     &productID,
	})

	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	require.NotNil(t, lead.ProductID)
	assert.Equal(t, productID, *lead.ProductID)
	assert.Contains(t, lead.Metadata, "scoring")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPassesStoreErrorThrough(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	storeErr := errors.New(`null value in column "email" violates not-null constraint`)
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(storeErr)

	_, err = New(mock).Insert(context.Background(), domain.Draft{Name: "ana"})

	assert.ErrorIs(t, err, storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountsThenPages(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(25))

	rows := pgxmock.NewRows(leadColumnNames)
	for i := 0; i < 5; i++ {
		leadRow(rows, uuid.New(), "lead", (*uuid.UUID)(nil), `{}`)
	}
	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs(10, 20).
		WillReturnRows(rows)

	items, total, err := New(mock).List(context.Background(), ListParams{Limit: 10, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, items, 5)
	assert.Nil(t, items[0].ProductID)
	assert.NotNil(t, items[0].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownLead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("DELETE FROM leads").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = New(mock).Delete(context.Background(), id)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOnlyTouchesProvidedFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	status := "contacted"
	mock.ExpectQuery(`UPDATE leads SET status = \$1, updated_at = now\(\) WHERE id = \$2`).
		WithArgs(status, id).
		WillReturnRows(leadRow(pgxmock.NewRows(leadColumnNames), id, "ana", (*uuid.UUID)(nil), `{}`))

	_, err = New(mock).Update(context.Background(), id, UpdateLeadParams{Status: &status})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
