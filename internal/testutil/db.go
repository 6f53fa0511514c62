// Package testutil provides store fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rar-studio/internal/database"
	"rar-studio/internal/model"
)

// NewDB returns a migrated, seeded in-memory SQLite store private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateLead inserts a lead with the given id and contact
func CreateLead(t *testing.T, db *gorm.DB, id, contact string) model.Lead {
	t.Helper()

	lead := model.Lead{ID: id, Name: "Lead " + id, Contact: contact, Stage: model.StageNew}
	require.NoError(t, db.Create(&lead).Error)
	return lead
}

// SetIntegrations overwrites the integrations singleton flags
func SetIntegrations(t *testing.T, db *gorm.DB, twilio, sendgrid bool) {
	t.Helper()

	require.NoError(t, db.Model(&model.Integrations{}).Where("id = ?", model.SingletonID).Updates(map[string]interface{}{
		"twilio_enabled":   twilio,
		"sendgrid_enabled": sendgrid,
	}).Error)
}

// SetLeadCap overwrites the monthly lead cap
func SetLeadCap(t *testing.T, db *gorm.DB, cap int) {
	t.Helper()

	require.NoError(t, db.Model(&model.TenantLimits{}).Where("id = ?", model.SingletonID).Update("lead_cap", cap).Error)
}

// Clock is a settable time source for deterministic tests
type Clock struct {
	Current time.Time
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
