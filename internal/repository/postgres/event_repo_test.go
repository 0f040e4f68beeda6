package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
)

var eventRowColumns = []string{
	"id", "name", "category", "date", "start_time", "end_time", "description", "image",
	"location_lat", "location_lng", "address", "visibility_radius_km", "max_attendees",
	"rsvp_count", "attendees", "creator_id", "created_at", "updated_at",
}

func eventRow(id string) *sqlmock.Rows {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventRowColumns).AddRow(
		id, "Morning Run", "sports", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		"08:00", "09:30", "Easy 10k", nil,
		52.52, 13.405, "Tiergarten", 5.0, 20,
		2, []byte(`{user-1,user-2}`), "creator-1", now, now,
	)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Name:        "Morning Run",
				Category:    "sports",
				Date:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
				StartTime:   "08:00",
				EndTime:     "09:30",
				LocationLat: 52.52,
				LocationLng: 13.405,
				CreatorID:   "creator-1",
				CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				UpdatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			event: &domain.Event{
				Name:      "Morning Run",
				CreatorID: "creator-1",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		e, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.Equal(t, "Morning Run", e.Name)
		require.Equal(t, 2, e.RSVPCount)
		require.Equal(t, []string{"user-1", "user-2"}, e.Attendees)
		require.NotNil(t, e.MaxAttendees)
		require.Equal(t, 20, *e.MaxAttendees)
		require.Nil(t, e.Image)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("sets only provided fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		name := "Evening Run"
		maxAttendees := 30
		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), name = \$1, max_attendees = \$2\s+WHERE id = \$3`).
			WithArgs("Evening Run", 30, "ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-1", domain.EventUpdate{
			Name:         &name,
			MaxAttendees: &maxAttendees,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields falls back to fetch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1"))

		repo := NewEventRepository(db)
		e, err := repo.Update(ctx, "ev-1", domain.EventUpdate{})
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		name := "Evening Run"
		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-missing", domain.EventUpdate{Name: &name})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes markers and event in one tx", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_rsvps WHERE event_id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM event_rsvps WHERE event_id = \$1`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := eventRow("ev-1")
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows.AddRow(
		"ev-2", "Book Club", "social", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		"19:00", "21:00", nil, nil,
		48.85, 2.35, nil, nil, nil,
		0, []byte(`{}`), "creator-2", now, now,
	)
	mock.ExpectQuery(`SELECT (.+) FROM events ORDER BY date ASC`).
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "ev-2", events[1].ID)
	require.Nil(t, events[1].MaxAttendees)
	require.Empty(t, events[1].Attendees)
	require.NoError(t, mock.ExpectationsWereMet())
}
