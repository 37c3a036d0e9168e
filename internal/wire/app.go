package wire

import (
	"gorm.io/gorm"

	"schooltalk/internal/attachment"
	"schooltalk/internal/config"
	"schooltalk/internal/dbmongo"
	"schooltalk/internal/fanout"
	"schooltalk/internal/messaging"
)

// Application bundles everything main needs to serve requests and shut
// down cleanly.
type Application struct {
	Config            *config.Config
	DB                *gorm.DB
	Mongo             *dbmongo.MongoClient
	MessagingHandler  *messaging.Handler
	FanoutHandler     *fanout.Handler
	AttachmentHandler *attachment.Handler
}
