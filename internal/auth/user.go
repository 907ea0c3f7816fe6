package auth

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// User is a registered operator account. The password is stored only as a
// bcrypt hash.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;uniqueIndex:idx_users_email;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}

// TableName defines the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Migrate applies the user schema using Gorm's AutoMigrate.
func Migrate(ctx context.Context, conn *gorm.DB, logger *logrus.Logger) error {
	if conn == nil {
		return eris.New("gorm DB is required")
	}

	if logger != nil {
		logger.WithField("component", "auth.migrate").Info("applying user schema")
	}

	if err := conn.WithContext(ctx).AutoMigrate(&User{}); err != nil {
		return eris.Wrap(err, "auto migrating user schema")
	}

	return nil
}
