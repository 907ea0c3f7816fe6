package chat

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the conversation schema using Gorm's AutoMigrate.
func Migrate(ctx context.Context, conn *gorm.DB, logger *logrus.Logger) error {
	if conn == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "chat.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying chat schema")
	}

	if err := conn.WithContext(ctx).AutoMigrate(&Conversation{}, &Message{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("chat schema migration failed")
		}
		return eris.Wrap(err, "auto migrating chat schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("chat schema migration complete")
	}

	return nil
}
