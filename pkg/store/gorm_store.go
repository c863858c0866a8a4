package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"reelbase/pkg/domain"
)

const migrateLockID int64 = 52803117

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so multiple instances can start concurrently.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&MovieModel{},
			&ReviewModel{},
			&UserModel{},
			&WatchlistModel{},
			&PreferenceModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("raw db handle: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(context.Background(), conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// movies

func (s *GormStore) SaveMovie(m domain.Movie) error {
	model, err := movieToModel(m)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (s *GormStore) GetMovie(id string) (domain.Movie, bool, error) {
	var model MovieModel
	err := s.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Movie{}, false, nil
	}
	if err != nil {
		return domain.Movie{}, false, err
	}
	m, err := movieFromModel(model)
	return m, err == nil, err
}

func (s *GormStore) FindMovieByTitle(title string) (domain.Movie, bool, error) {
	var model MovieModel
	err := s.db.First(&model, "title = ?", title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Movie{}, false, nil
	}
	if err != nil {
		return domain.Movie{}, false, err
	}
	m, err := movieFromModel(model)
	return m, err == nil, err
}

func (s *GormStore) ListMovies(filter MovieFilter) ([]domain.Movie, error) {
	q := s.db.Model(&MovieModel{}).Order("created_at ASC")
	if filter.Genre != "" {
		q = q.Where("genres @> ?", genreMember(filter.Genre))
	}
	if filter.Year != "" {
		q = q.Where("year = ?", filter.Year)
	}
	return s.collectMovies(q)
}

func (s *GormStore) TopRatedMovies(limit int) ([]domain.Movie, error) {
	q := s.db.Model(&MovieModel{}).Order("rating DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.collectMovies(q)
}

func (s *GormStore) MoviesRatedAtLeast(min float64) ([]domain.Movie, error) {
	q := s.db.Model(&MovieModel{}).Where("rating >= ?", min).Order("rating DESC")
	return s.collectMovies(q)
}

func (s *GormStore) MoviesByGenre(genre string) ([]domain.Movie, error) {
	q := s.db.Model(&MovieModel{}).
		Where("genres @> ?", genreMember(genre)).
		Order("rating DESC")
	return s.collectMovies(q)
}

func (s *GormStore) DeleteMovie(id string) error {
	return s.db.Delete(&MovieModel{}, "id = ?", id).Error
}

func (s *GormStore) collectMovies(q *gorm.DB) ([]domain.Movie, error) {
	var models []MovieModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Movie, 0, len(models))
	for _, model := range models {
		m, err := movieFromModel(model)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// genreMember renders a single-element jsonb array for containment queries.
func genreMember(genre string) datatypes.JSON {
	b, _ := json.Marshal([]string{genre})
	return datatypes.JSON(b)
}

// reviews

func (s *GormStore) SaveReview(r domain.Review) error {
	model := reviewToModel(r)
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (s *GormStore) GetReview(movieID, reviewID string) (domain.Review, bool, error) {
	var model ReviewModel
	err := s.db.First(&model, "id = ? AND movie_id = ?", reviewID, movieID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Review{}, false, nil
	}
	if err != nil {
		return domain.Review{}, false, err
	}
	return reviewFromModel(model), true, nil
}

func (s *GormStore) ListReviews(movieID string) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Where("movie_id = ?", movieID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(models))
	for _, model := range models {
		out = append(out, reviewFromModel(model))
	}
	return out, nil
}

func (s *GormStore) DeleteReview(movieID, reviewID string) error {
	return s.db.Delete(&ReviewModel{}, "id = ? AND movie_id = ?", reviewID, movieID).Error
}

// users

func (s *GormStore) SaveUser(u domain.User) error {
	model, err := userToModel(u)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (s *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	err := s.db.First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	return u, err == nil, err
}

func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(models))
	for _, model := range models {
		u, err := userFromModel(model)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

func (s *GormStore) ListDeviceTokens() ([]string, error) {
	var tokens []string
	err := s.db.Model(&UserModel{}).
		Where("device_token <> ''").
		Pluck("device_token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// watchlists

func (s *GormStore) WatchlistAdd(userID, movieID string) ([]string, error) {
	var out []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		model, err := lockWatchlist(tx, userID)
		if err != nil {
			return err
		}
		for _, id := range model.MovieIDs {
			if id == movieID {
				out = model.MovieIDs
				return nil
			}
		}
		model.MovieIDs = append(model.MovieIDs, movieID)
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
			return err
		}
		out = model.MovieIDs
		return nil
	})
	return emptyNotNil(out), err
}

func (s *GormStore) WatchlistRemove(userID, movieID string) ([]string, error) {
	var out []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		model, err := lockWatchlist(tx, userID)
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(model.MovieIDs))
		for _, id := range model.MovieIDs {
			if id != movieID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(model.MovieIDs) {
			out = model.MovieIDs
			return nil
		}
		model.MovieIDs = kept
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
			return err
		}
		out = model.MovieIDs
		return nil
	})
	return emptyNotNil(out), err
}

func (s *GormStore) Watchlist(userID string) ([]string, error) {
	var model WatchlistModel
	err := s.db.First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return emptyNotNil(model.MovieIDs), nil
}

func lockWatchlist(tx *gorm.DB, userID string) (WatchlistModel, error) {
	var model WatchlistModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WatchlistModel{UserID: userID}, nil
	}
	if err != nil {
		return WatchlistModel{}, err
	}
	return model, nil
}

func emptyNotNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// preference bags

func (s *GormStore) SavePreferences(userID string, prefs map[string]any) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	model := PreferenceModel{
		UserID:    userID,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error
}

func (s *GormStore) GetPreferences(userID string) (map[string]any, bool, error) {
	var model PreferenceModel
	err := s.db.First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var prefs map[string]any
	if len(model.Data) > 0 {
		if err := json.Unmarshal(model.Data, &prefs); err != nil {
			return nil, false, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	return prefs, true, nil
}

// mappers

func movieToModel(m domain.Movie) (MovieModel, error) {
	var extra datatypes.JSON
	if len(m.Extra) > 0 {
		b, err := json.Marshal(m.Extra)
		if err != nil {
			return MovieModel{}, fmt.Errorf("marshal movie extra: %w", err)
		}
		extra = datatypes.JSON(b)
	}
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return MovieModel{
		ID:        m.ID,
		Title:     m.Title,
		Genres:    datatypes.NewJSONSlice(genres),
		Year:      m.Year,
		Rating:    m.Rating,
		Poster:    m.Poster,
		Extra:     extra,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func movieFromModel(model MovieModel) (domain.Movie, error) {
	var extra map[string]any
	if len(model.Extra) > 0 {
		if err := json.Unmarshal(model.Extra, &extra); err != nil {
			return domain.Movie{}, fmt.Errorf("unmarshal movie extra: %w", err)
		}
	}
	return domain.Movie{
		ID:        model.ID,
		Title:     model.Title,
		Genres:    append([]string{}, model.Genres...),
		Year:      model.Year,
		Rating:    model.Rating,
		Poster:    model.Poster,
		Extra:     extra,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func reviewToModel(r domain.Review) ReviewModel {
	return ReviewModel{
		ID:        r.ID,
		MovieID:   r.MovieID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func reviewFromModel(model ReviewModel) domain.Review {
	return domain.Review{
		ID:        model.ID,
		MovieID:   model.MovieID,
		AuthorID:  model.AuthorID,
		Rating:    model.Rating,
		Body:      model.Body,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func userToModel(u domain.User) (UserModel, error) {
	prefs, err := marshalOptional(u.Preferences)
	if err != nil {
		return UserModel{}, fmt.Errorf("marshal preferences: %w", err)
	}
	claims, err := marshalOptional(u.Claims)
	if err != nil {
		return UserModel{}, fmt.Errorf("marshal claims: %w", err)
	}
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		Preferences:  prefs,
		DeviceToken:  u.DeviceToken,
		Claims:       claims,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLoginAt:  u.LastLoginAt,
	}, nil
}

func userFromModel(model UserModel) (domain.User, error) {
	prefs, err := unmarshalOptional(model.Preferences)
	if err != nil {
		return domain.User{}, fmt.Errorf("unmarshal preferences: %w", err)
	}
	claims, err := unmarshalOptional(model.Claims)
	if err != nil {
		return domain.User{}, fmt.Errorf("unmarshal claims: %w", err)
	}
	return domain.User{
		ID:           model.ID,
		Email:        model.Email,
		DisplayName:  model.DisplayName,
		PasswordHash: model.PasswordHash,
		Preferences:  prefs,
		DeviceToken:  model.DeviceToken,
		Claims:       claims,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		LastLoginAt:  model.LastLoginAt,
	}, nil
}

func marshalOptional(m map[string]any) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func unmarshalOptional(data datatypes.JSON) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
