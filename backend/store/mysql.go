package store

import (
	"context"
	"database/sql"

	"citywatch/api"
	"citywatch/common"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// MySQL persists problems and users in MySQL. Insertion order is tracked by
// an auto-increment seq so listing can return newest first without trusting
// client clocks.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			seq INT NOT NULL AUTO_INCREMENT,
			id VARCHAR(64) NOT NULL,
			title VARCHAR(256) NOT NULL,
			description TEXT NOT NULL,
			category VARCHAR(32) NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			address VARCHAR(256) NOT NULL DEFAULT '',
			upvotes INT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			created_at VARCHAR(40) NOT NULL,
			reported_by VARCHAR(256) NOT NULL DEFAULT '',
			image_url TEXT,
			video_url TEXT,
			audio_url TEXT,
			PRIMARY KEY (seq),
			UNIQUE KEY uq_problems_id (id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(256) NOT NULL,
			password_hash VARCHAR(256) NOT NULL,
			PRIMARY KEY (username)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			log.Errorf("Schema init failed: %v", err)
			return err
		}
	}
	return nil
}

const problemColumns = `id, title, description, category, latitude, longitude, address,
	  upvotes, status, created_at, reported_by,
	  COALESCE(image_url, ''), COALESCE(video_url, ''), COALESCE(audio_url, '')`

func (s *MySQL) ListProblems(ctx context.Context) ([]api.Problem, error) {
	rows, err := s.db.QueryContext(ctx, `
	  SELECT `+problemColumns+`
	  FROM problems
	  ORDER BY seq DESC`)
	if err != nil {
		log.Errorf("Failed to list problems: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []api.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *MySQL) GetProblem(ctx context.Context, id string) (*api.Problem, error) {
	rows, err := s.db.QueryContext(ctx, `
	  SELECT `+problemColumns+`
	  FROM problems
	  WHERE id = ?`, id)
	if err != nil {
		log.Errorf("Failed to get problem %s: %v", id, err)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanProblem(rows)
}

func (s *MySQL) InsertProblem(ctx context.Context, p *api.Problem) error {
	result, err := s.db.ExecContext(ctx, `INSERT
	  INTO problems (id, title, description, category, latitude, longitude, address,
	    upvotes, status, created_at, reported_by, image_url, video_url, audio_url)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, string(p.Category),
		p.Location.Lat, p.Location.Lng, p.Location.Address,
		p.Upvotes, string(p.Status), p.CreatedAt, p.ReportedBy,
		p.ImageURL, p.VideoURL, p.AudioURL)
	common.LogResult("insertProblem", result, err, true)
	return err
}

func (s *MySQL) UpvoteProblem(ctx context.Context, id string) (*api.Problem, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE problems SET upvotes = upvotes + 1 WHERE id = ?`, id)
	common.LogResult("upvoteProblem", result, err, true)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetProblem(ctx, id)
}

func (s *MySQL) InsertUser(ctx context.Context, u User) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username FROM users WHERE username = ?`, u.Username)
	if err != nil {
		log.Errorf("Failed to check user %s: %v", u.Username, err)
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return ErrAlreadyExists
	}
	if err := rows.Err(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		u.Username, u.PasswordHash)
	common.LogResult("insertUser", result, err, true)
	return err
}

func (s *MySQL) GetUser(ctx context.Context, username string) (*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password_hash FROM users WHERE username = ?`, username)
	if err != nil {
		log.Errorf("Failed to get user %s: %v", username, err)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	u := &User{}
	if err := rows.Scan(&u.Username, &u.PasswordHash); err != nil {
		return nil, err
	}
	return u, nil
}

func scanProblem(rows *sql.Rows) (*api.Problem, error) {
	p := &api.Problem{}
	var category, status string
	if err := rows.Scan(&p.ID, &p.Title, &p.Description, &category,
		&p.Location.Lat, &p.Location.Lng, &p.Location.Address,
		&p.Upvotes, &status, &p.CreatedAt, &p.ReportedBy,
		&p.ImageURL, &p.VideoURL, &p.AudioURL); err != nil {
		log.Errorf("Failed to scan problem row: %v", err)
		return nil, err
	}
	p.Category = api.Category(category)
	p.Status = api.Status(status)
	return p, nil
}
