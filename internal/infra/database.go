package infra

import (
	"fmt"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and tunes the
// connection pool. Schema creation is a separate step; callers run
// RunMigrations themselves.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Exposed
// separately so integration tests can migrate a scratch database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Supplier{},
		&model.Booking{},
		&model.Payment{},
		&model.Expense{},
		&model.LedgerEntry{},
		&model.BookingLedgerAllocation{},
		&model.VisaApplication{},
		&model.Notification{},
		&model.DocumentTemplate{},
		&model.GeneratedDocument{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully
// handle on its own. Each statement uses IF NOT EXISTS / existence-check
// semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Partial index for the notification retry cron query.
		{"notifications pending-retry index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_notifications_pending_retry') THEN
    CREATE INDEX idx_notifications_pending_retry
        ON notifications (next_retry_at)
        WHERE status = 'error' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
		// Exactly one of debit/credit nonzero per journal row.
		{"ledger one-sided amount check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ledger_one_sided') THEN
    ALTER TABLE ledger_entries
      ADD CONSTRAINT chk_ledger_one_sided
      CHECK ((debit = 0) <> (credit = 0));
  END IF;
END $$`},
		// Partial index for the daily-closing selection scan.
		{"ledger unconsolidated index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ledger_unconsolidated') THEN
    CREATE INDEX idx_ledger_unconsolidated
        ON ledger_entries (date)
        WHERE NOT is_consolidated;
  END IF;
END $$`},
		// Allocation amounts are strictly positive.
		{"allocation positive amount check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_allocation_positive') THEN
    ALTER TABLE booking_ledger_allocations
      ADD CONSTRAINT chk_allocation_positive
      CHECK (amount > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
