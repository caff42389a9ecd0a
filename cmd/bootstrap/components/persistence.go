package components

import (
	"smartpark/internal/infra/db"
	"smartpark/internal/infra/readstore"
	"smartpark/internal/infra/uow"
	"smartpark/internal/pkg/config"
	"smartpark/internal/usecase/queries"
	"smartpark/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewLocationReadStore,
			fx.As(new(queries.LocationReadStore)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
	),
)

// Write repositories are created per transaction by the unit of work.
var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		NewUnitOfWork,
	),
)

func NewUnitOfWork(pool *pgxpool.Pool, cfg config.Config) shared.UnitOfWork {
	return uow.NewPostgresUoW(pool, cfg.Booking.Location())
}

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
