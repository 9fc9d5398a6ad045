package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"citywatch/api"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func TestMySQLInsertProblem(t *testing.T) {
	it(func() {
		s := NewMySQL(db)
		p := &api.Problem{
			ID:          "abc",
			Title:       "Pothole",
			Description: "Deep one",
			Category:    api.CategoryInfrastructure,
			Location:    api.Location{Lat: 1.0, Lng: 2.0, Address: "X"},
			Upvotes:     0,
			Status:      api.StatusOpen,
			CreatedAt:   "2023-10-25T10:00:00Z",
		}

		mock.ExpectExec("INSERT\\s+INTO problems").
			WithArgs("abc", "Pothole", "Deep one", "infrastructure",
				1.0, 2.0, "X", 0, "open", "2023-10-25T10:00:00Z", "", "", "", "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := s.InsertProblem(context.Background(), p); err != nil {
			t.Errorf("InsertProblem failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestMySQLUpvoteProblem(t *testing.T) {
	it(func() {
		testCases := []struct {
			name         string
			id           string
			rowsAffected int64
			expectGet    bool
			wantErr      error
		}{
			{
				name:         "Existing problem",
				id:           "abc",
				rowsAffected: 1,
				expectGet:    true,
			}, {
				name:         "Unknown problem",
				id:           "nope",
				rowsAffected: 0,
				wantErr:      ErrNotFound,
			},
		}

		for _, testCase := range testCases {
			s := NewMySQL(db)
			mock.ExpectExec("UPDATE problems SET upvotes = upvotes \\+ 1 WHERE id = \\?").
				WithArgs(testCase.id).
				WillReturnResult(sqlmock.NewResult(0, testCase.rowsAffected))
			if testCase.expectGet {
				rows := sqlmock.NewRows([]string{
					"id", "title", "description", "category", "latitude", "longitude",
					"address", "upvotes", "status", "created_at", "reported_by",
					"image_url", "video_url", "audio_url",
				}).AddRow(testCase.id, "Pothole", "Deep one", "infrastructure",
					1.0, 2.0, "X", 6, "open", "2023-10-25T10:00:00Z", "", "", "", "")
				mock.ExpectQuery("SELECT (.+) FROM problems\\s+WHERE id = \\?").
					WithArgs(testCase.id).
					WillReturnRows(rows)
			}

			p, err := s.UpvoteProblem(context.Background(), testCase.id)
			if !errors.Is(err, testCase.wantErr) {
				t.Errorf("%s: UpvoteProblem = %v, want %v", testCase.name, err, testCase.wantErr)
			}
			if testCase.expectGet && (p == nil || p.Upvotes != 6) {
				t.Errorf("%s: unexpected problem %+v", testCase.name, p)
			}
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestMySQLInsertUser(t *testing.T) {
	it(func() {
		testCases := []struct {
			name         string
			username     string
			existingRows []string
			execExpected bool
			wantErr      error
		}{
			{
				name:         "New user",
				username:     "citizen1",
				existingRows: nil,
				execExpected: true,
			}, {
				name:         "Duplicate user",
				username:     "admin",
				existingRows: []string{"admin"},
				wantErr:      ErrAlreadyExists,
			},
		}

		for _, testCase := range testCases {
			s := NewMySQL(db)
			rows := sqlmock.NewRows([]string{"username"})
			for _, r := range testCase.existingRows {
				rows.AddRow(r)
			}
			mock.ExpectQuery("SELECT username FROM users WHERE username = \\?").
				WithArgs(testCase.username).
				WillReturnRows(rows)
			if testCase.execExpected {
				mock.ExpectExec("INSERT INTO users \\(username, password_hash\\) VALUES \\(\\?, \\?\\)").
					WithArgs(testCase.username, "hash").
					WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := s.InsertUser(context.Background(), User{Username: testCase.username, PasswordHash: "hash"})
			if !errors.Is(err, testCase.wantErr) {
				t.Errorf("%s: InsertUser = %v, want %v", testCase.name, err, testCase.wantErr)
			}
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestMySQLGetUser(t *testing.T) {
	it(func() {
		s := NewMySQL(db)
		mock.ExpectQuery("SELECT username, password_hash FROM users WHERE username = \\?").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash"}))

		if _, err := s.GetUser(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUser(ghost) = %v, want ErrNotFound", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestMySQLListProblems(t *testing.T) {
	it(func() {
		s := NewMySQL(db)
		rows := sqlmock.NewRows([]string{
			"id", "title", "description", "category", "latitude", "longitude",
			"address", "upvotes", "status", "created_at", "reported_by",
			"image_url", "video_url", "audio_url",
		}).
			AddRow("2", "Second", "d2", "sanitation", 3.0, 4.0, "", 1, "open", "2023-10-26T09:30:00Z", "", "", "", "").
			AddRow("1", "First", "d1", "infrastructure", 1.0, 2.0, "X", 0, "open", "2023-10-25T10:00:00Z", "", "", "", "")
		mock.ExpectQuery("SELECT (.+) FROM problems\\s+ORDER BY seq DESC").
			WillReturnRows(rows)

		list, err := s.ListProblems(context.Background())
		if err != nil {
			t.Fatalf("ListProblems failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != "2" || list[1].ID != "1" {
			t.Errorf("unexpected list %+v", list)
		}
		if list[0].Category != api.CategorySanitation {
			t.Errorf("Category = %s, want sanitation", list[0].Category)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
