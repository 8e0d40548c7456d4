package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/pkg/logger"
	"github.com/okian/valuator/pkg/metrics"
)

// releasedClause matches the status check of model.Track.Released.
const releasedClause = "lower(trim(status)) = ?"

// trackRow is the persisted form of model.Track.
type trackRow struct {
	CatalogID       string `gorm:"primaryKey"`
	ID              string `gorm:"primaryKey"`
	Title           string
	Status          string `gorm:"index"`
	ReleaseDate     *time.Time
	PublisherSplits *string
	Streams         int64
}

func (trackRow) TableName() string { return "tracks" }

func rowOf(catalogID string, t model.Track) trackRow {
	return trackRow{
		CatalogID:       catalogID,
		ID:              t.ID,
		Title:           t.Title,
		Status:          t.Status,
		ReleaseDate:     t.ReleaseDate,
		PublisherSplits: t.PublisherSplits,
		Streams:         t.Streams,
	}
}

func (r trackRow) track() model.Track {
	return model.Track{
		ID:              r.ID,
		CatalogID:       r.CatalogID,
		Title:           r.Title,
		Status:          r.Status,
		ReleaseDate:     r.ReleaseDate,
		PublisherSplits: r.PublisherSplits,
		Streams:         r.Streams,
	}
}

// SQLStore persists catalogs in a sqlite database through gorm.
type SQLStore struct {
	db        *gorm.DB
	log       logger.Logger
	batchSize int
}

// OpenSQLStore opens (creating if necessary) and migrates the sqlite database
// at path.
func OpenSQLStore(path string, opts ...Option) (*SQLStore, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", path, err)
	}
	if err := gdb.AutoMigrate(&trackRow{}); err != nil {
		return nil, fmt.Errorf("error migrating db at '%s': %w", path, err)
	}

	s := &SQLStore{db: gdb, log: logger.Nop(), batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReleasedTracks implements Store.ReleasedTracks.
func (s *SQLStore) ReleasedTracks(ctx context.Context, catalogID string) ([]model.Track, error) {
	defer observe("released_tracks", time.Now())

	if err := s.exists(ctx, catalogID); err != nil {
		return nil, err
	}
	var rows []trackRow
	if err := s.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Where(releasedClause, model.StatusReleased).
		Order("id").
		Find(&rows).
		Error; err != nil {
		return nil, s.fail(ctx, "released_tracks", catalogID, err)
	}

	out := make([]model.Track, len(rows))
	for i, r := range rows {
		out[i] = r.track()
	}
	return out, nil
}

// StreamStats implements Store.StreamStats.
func (s *SQLStore) StreamStats(ctx context.Context, catalogID string) (model.StreamStats, error) {
	defer observe("stream_stats", time.Now())

	if err := s.exists(ctx, catalogID); err != nil {
		return model.StreamStats{}, err
	}

	var stats model.StreamStats
	if err := s.db.WithContext(ctx).
		Model(&trackRow{}).
		Where("catalog_id = ?", catalogID).
		Where(releasedClause, model.StatusReleased).
		Select("COALESCE(SUM(streams), 0)").
		Scan(&stats.Total).
		Error; err != nil {
		return model.StreamStats{}, s.fail(ctx, "stream_stats", catalogID, err)
	}

	var top []int64
	if err := s.db.WithContext(ctx).
		Model(&trackRow{}).
		Where("catalog_id = ?", catalogID).
		Where(releasedClause, model.StatusReleased).
		Order("streams desc").
		Limit(topStreamTracks).
		Pluck("streams", &top).
		Error; err != nil {
		return model.StreamStats{}, s.fail(ctx, "stream_stats", catalogID, err)
	}
	for _, n := range top {
		stats.TopFive += n
	}
	return stats, nil
}

// Holders implements Store.Holders.
func (s *SQLStore) Holders(ctx context.Context, catalogID string) ([]model.Holder, error) {
	defer observe("holders", time.Now())

	var rows []trackRow
	if err := s.db.WithContext(ctx).
		Where("catalog_id = ? AND publisher_splits IS NOT NULL", catalogID).
		Find(&rows).
		Error; err != nil {
		return nil, s.fail(ctx, "holders", catalogID, err)
	}
	if len(rows) == 0 {
		if err := s.exists(ctx, catalogID); err != nil {
			return nil, err
		}
		return []model.Holder{}, nil
	}

	tracks := make([]model.Track, len(rows))
	for i, r := range rows {
		tracks[i] = r.track()
	}
	return holdersOf(tracks), nil
}

// PutTracks implements Store.PutTracks.
func (s *SQLStore) PutTracks(ctx context.Context, catalogID string, tracks []model.Track) error {
	defer observe("put_tracks", time.Now())

	if err := validateTracks(catalogID, tracks); err != nil {
		metrics.RecordStoreError("put_tracks")
		return err
	}
	if len(tracks) == 0 {
		return nil
	}

	rows := make([]trackRow, len(tracks))
	for i, t := range tracks {
		rows[i] = rowOf(catalogID, t)
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&rows, s.batchSize).
		Error; err != nil {
		return s.fail(ctx, "put_tracks", catalogID, err)
	}

	metrics.UpdateCatalogsTotal(s.Count(ctx))
	return nil
}

// Count implements Store.Count. Query failures count as zero.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int64
	if err := s.db.WithContext(ctx).
		Model(&trackRow{}).
		Distinct("catalog_id").
		Count(&n).
		Error; err != nil {
		_ = s.fail(ctx, "count", "", err)
		return 0
	}
	return int(n)
}

func (s *SQLStore) exists(ctx context.Context, catalogID string) error {
	var row trackRow
	err := s.db.WithContext(ctx).
		Select("catalog_id").
		Where("catalog_id = ?", catalogID).
		Take(&row).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		metrics.RecordStoreError("not_found")
		return ErrCatalogNotFound
	case err != nil:
		return s.fail(ctx, "exists", catalogID, err)
	}
	return nil
}

func (s *SQLStore) fail(ctx context.Context, op, catalogID string, err error) error {
	metrics.RecordStoreError(op)
	s.log.Error(ctx, "catalog store query failed",
		logger.String("op", op),
		logger.String("catalog_id", catalogID),
		logger.Error(err),
	)
	return fmt.Errorf("%s catalog '%s': %w", op, catalogID, err)
}
