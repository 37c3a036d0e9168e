//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"schooltalk/internal/attachment"
	"schooltalk/internal/common"
	"schooltalk/internal/config"
	"schooltalk/internal/dbmongo"
	"schooltalk/internal/dbmysql"
	"schooltalk/internal/fanout"
	"schooltalk/internal/messaging"
	"schooltalk/internal/roster"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		dbmysql.NewThreadRepository,
		dbmysql.NewMessageRepository,
		dbmongo.NewMongoConnection,
		dbmongo.NewBlobStorage,
		wire.Bind(new(common.BlobStorage), new(*dbmongo.BlobStorage)),
		roster.NewDirectory,
		messaging.NewService,
		messaging.NewHandler,
		fanout.NewService,
		fanout.NewHandler,
		attachment.NewService,
		attachment.NewHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
