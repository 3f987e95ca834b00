package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newRun(query string, st models.SearchType, outcome models.RunOutcome, response time.Duration) *models.Run {
	run := &models.Run{
		Query:        query,
		SearchType:   st,
		Outcome:      outcome,
		Elapsed:      6500 * time.Millisecond,
		ResponseTime: response,
	}
	if outcome == models.RunFailed {
		run.ErrorKind = models.ErrorTimeout
	}
	return run
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("red shoes", models.SearchHybrid, models.RunCompleted, 800*time.Millisecond)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID == "" || run.Sequence != 1 {
			t.Errorf("expected ID and sequence 1 to be set, got %q %d", run.ID, run.Sequence)
		}
		if run.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("Create Rejects Invalid Runs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		err := repo.Create(&models.Run{Query: "q", Outcome: models.RunFailed})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newRun("lamps", models.SearchKeyword, models.RunFailed, 0)
		run.Accelerated = true
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Query != "lamps" || got.SearchType != models.SearchKeyword || got.Outcome != models.RunFailed {
			t.Errorf("unexpected run %+v", got)
		}
		if got.ErrorKind != models.ErrorTimeout || !got.Accelerated || got.Elapsed != 6500*time.Millisecond {
			t.Errorf("unexpected run details %+v", got)
		}
		if got.CreatedAt.Sub(run.CreatedAt).Abs() > time.Second {
			t.Errorf("expected CreatedAt %v, got %v", run.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewRunRepository(db).Get("nope")
		if !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		fixtures := []*models.Run{
			newRun("a", models.SearchHybrid, models.RunCompleted, time.Second),
			newRun("b", models.SearchSemantic, models.RunCancelled, 0),
			newRun("c", models.SearchHybrid, models.RunFailed, 0),
			newRun("d", models.SearchHybrid, models.RunCompleted, 2*time.Second),
		}
		for _, run := range fixtures {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		tc := []struct {
			name   string
			filter RunFilter
			want   []string
		}{
			{"All Newest First", RunFilter{}, []string{"d", "c", "b", "a"}},
			{"By Search Type", RunFilter{SearchType: models.SearchHybrid}, []string{"d", "c", "a"}},
			{"By Outcome", RunFilter{Outcome: models.RunCompleted}, []string{"d", "a"}},
			{"With Limit", RunFilter{Limit: 2}, []string{"d", "c"}},
		}
		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				runs, err := repo.List(c.filter)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				var got []string
				for _, r := range runs {
					got = append(got, r.Query)
				}
				if len(got) != len(c.want) {
					t.Fatalf("expected %v, got %v", c.want, got)
				}
				for i := range got {
					if got[i] != c.want[i] {
						t.Errorf("expected %v, got %v", c.want, got)
						break
					}
				}
			})
		}

		n, err := repo.Count()
		if err != nil || n != 4 {
			t.Errorf("expected 4 runs, got %d (%v)", n, err)
		}
	})

	t.Run("LastSuccessful", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.LastSuccessful(models.SearchHybrid); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on empty history, got %v", err)
		}

		for _, run := range []*models.Run{
			newRun("a", models.SearchHybrid, models.RunCompleted, 900*time.Millisecond),
			newRun("b", models.SearchHybrid, models.RunCompleted, 1500*time.Millisecond),
			newRun("c", models.SearchHybrid, models.RunFailed, 0),
			newRun("d", models.SearchHybrid, models.RunCompleted, 0),
			newRun("e", models.SearchKeyword, models.RunCompleted, 300*time.Millisecond),
		} {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		got, err := repo.LastSuccessful(models.SearchHybrid)
		if err != nil {
			t.Fatalf("LastSuccessful failed: %v", err)
		}
		if got.Query != "b" || got.ResponseTime != 1500*time.Millisecond {
			t.Errorf("expected run b with 1500ms, got %s with %v", got.Query, got.ResponseTime)
		}
	})
}
