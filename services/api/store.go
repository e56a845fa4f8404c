package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"sluggo/pkg/bus"
	gos3 "sluggo/pkg/s3"
)

// Store holds external dependencies required by the API layer. Bus and S3
// are optional: without a bus, activity stays in the events table; without
// S3, attachment endpoints report the feature as unavailable.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *bus.Bus
	S3  *gos3.Client
}
