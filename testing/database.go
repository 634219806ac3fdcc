// Package testing provides test utilities and database setup for package tests
package testing

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// schema mirrors the postgres tables with sqlite column types.
// JSONB and text[] columns are stored as TEXT.
var schema = []string{
	`CREATE TABLE brands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		is_active NUMERIC DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE creators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		avatar_url TEXT,
		description TEXT,
		category TEXT,
		subscribers INTEGER NOT NULL DEFAULT 0,
		avg_views INTEGER NOT NULL DEFAULT 0,
		platforms TEXT,
		location TEXT,
		is_active NUMERIC DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE campaigns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		brand_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		budget INTEGER NOT NULL DEFAULT 0,
		requirements TEXT NOT NULL,
		progress TEXT NOT NULL,
		current_stage TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE invitations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		campaign_id INTEGER NOT NULL,
		creator_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		compensation INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		responded_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (campaign_id, creator_id)
	)`,
	`CREATE TABLE content_submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		campaign_id INTEGER NOT NULL,
		creator_id INTEGER NOT NULL,
		invitation_id INTEGER NOT NULL,
		content_url TEXT NOT NULL,
		caption TEXT,
		status TEXT NOT NULL DEFAULT 'submitted',
		review_comment TEXT,
		reviewed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		recipient_type TEXT NOT NULL,
		recipient_id INTEGER NOT NULL,
		campaign_id INTEGER,
		payload TEXT,
		is_read NUMERIC NOT NULL DEFAULT 0,
		published_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor_type TEXT,
		actor_id INTEGER,
		action TEXT NOT NULL,
		description TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_id TEXT,
		metadata TEXT,
		success NUMERIC DEFAULT 1,
		error_message TEXT,
		created_at DATETIME
	)`,
}

// TestDB represents a test database instance
type TestDB struct {
	DB   *gorm.DB
	Name string
}

// SetupTestDB opens a private in-memory database and creates the schema
func SetupTestDB() (*TestDB, error) {
	name := fmt.Sprintf("collab_test_%d_%d", time.Now().UnixNano(), rand.Intn(10000))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database %s: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to create test schema: %w", err)
		}
	}

	return &TestDB{DB: db, Name: name}, nil
}

// TeardownTestDB closes the connection, which drops the in-memory database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TestWithDB runs testFunc against a fresh database and tears it down afterwards
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}
