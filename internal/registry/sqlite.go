package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"telegram-gateway-bot/internal/domain"
)

// userRecord - строка таблицы users.
type userRecord struct {
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	Username  string    `gorm:"column:username"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	JoinDate  time.Time `gorm:"column:join_date;index"`
}

func (userRecord) TableName() string { return "users" }

// SQLiteRegistry хранит пользователей в файле SQLite через gorm.
type SQLiteRegistry struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

// NewSQLiteRegistry открывает (или создает) базу по указанному пути и применяет миграцию.
func NewSQLiteRegistry(path string, log *slog.Logger) (*SQLiteRegistry, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// Запись в SQLite блокирует весь файл: одно соединение вместо SQLITE_BUSY
	// при одновременных /start от разных пользователей.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %w", err)
	}

	log.Info("sqlite registry opened", slog.String("path", path))
	return &SQLiteRegistry{db: db, log: log, now: time.Now}, nil
}

// UpsertSeen вставляет пользователя; существующая запись остается нетронутой.
func (r *SQLiteRegistry) UpsertSeen(ctx context.Context, user domain.User) error {
	joined := user.JoinedAt
	if joined.IsZero() {
		joined = r.now()
	}
	rec := userRecord{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		JoinDate:  joined.UTC(),
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("failed to insert user %d: %w", user.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		r.log.DebugContext(ctx, "new user registered", slog.Int64("user_id", user.ID))
	}
	return nil
}

func (r *SQLiteRegistry) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRegistry) AllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Order("join_date, user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRegistry) List(ctx context.Context) ([]domain.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("join_date, user_id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, domain.User{
			ID:        rec.UserID,
			Username:  rec.Username,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			JoinedAt:  rec.JoinDate,
		})
	}
	return users, nil
}

// Close закрывает пул соединений.
func (r *SQLiteRegistry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.Close()
}
