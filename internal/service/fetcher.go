package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
)

// CollectionStore is the remote store of record. One call reads one collection.
type CollectionStore interface {
	Fetch(ctx context.Context, collection models.Collection, params models.FetchParams) (*models.FetchResult, error)
}

// FetchPlan describes which collections are read in which phase. Collections in the same phase
// are read concurrently; a phase starts only after the previous one settled, so Params can derive
// arguments from what was already loaded.
type FetchPlan struct {
	Phases [][]models.Collection
	Params func(collection models.Collection, loaded *models.Snapshot) models.FetchParams
}

// DefaultFetchPlan reads the reference collections first and the joined collections second.
// When teacher is set, the second phase is narrowed to the class ids owned by that teacher.
func DefaultFetchPlan(teacher string) FetchPlan {
	return FetchPlan{
		Phases: [][]models.Collection{
			{models.CollectionClasses, models.CollectionStudents, models.CollectionAssignments, models.CollectionGamification, models.CollectionBadges},
			{models.CollectionGrades, models.CollectionAttendance},
		},
		Params: func(collection models.Collection, loaded *models.Snapshot) models.FetchParams {
			if teacher == "" {
				return nil
			}
			switch collection {
			case models.CollectionGrades, models.CollectionAttendance:
				ids := make([]string, 0, len(loaded.Classes))
				for _, class := range loaded.Classes {
					if strings.EqualFold(class.TeacherUsername, teacher) {
						ids = append(ids, class.ID)
					}
				}
				sort.Strings(ids)
				return models.FetchParams{"classIds": strings.Join(ids, ",")}
			}
			return nil
		},
	}
}

// EntityFetcherParams groups constructor dependencies.
type EntityFetcherParams struct {
	Store    CollectionStore
	Metrics  *MetricsService
	Logger   *zap.Logger
	Location *time.Location
}

// EntityFetcher loads a snapshot of every collection, tolerating per-collection failures.
type EntityFetcher struct {
	store   CollectionStore
	metrics *MetricsService
	logger  *zap.Logger
	decoder recordDecoder
	now     func() time.Time
}

// NewEntityFetcher constructs an EntityFetcher.
func NewEntityFetcher(params EntityFetcherParams) *EntityFetcher {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &EntityFetcher{
		store:   params.Store,
		metrics: params.Metrics,
		logger:  logger,
		decoder: recordDecoder{validate: newRecordValidator(), loc: loc},
		now:     time.Now,
	}
}

type fetchOutcome struct {
	rows    []models.Row
	failure string
}

// Fetch runs the plan phase by phase. A failed collection becomes an empty slice plus an entry in
// Snapshot.Failures. The only error returned is the caller's context error, in which case any
// results already read are discarded. A plan naming an unknown collection is rejected up front.
func (f *EntityFetcher) Fetch(ctx context.Context, plan FetchPlan) (*models.Snapshot, error) {
	for _, phase := range plan.Phases {
		for _, collection := range phase {
			if !collection.Valid() {
				return nil, appErrors.Clone(appErrors.ErrInvalidCollection, fmt.Sprintf("unknown collection %q", collection))
			}
		}
	}
	snapshot := &models.Snapshot{FetchedAt: f.now()}
	for _, phase := range plan.Phases {
		outcomes := make([]fetchOutcome, len(phase))
		var group errgroup.Group
		for i, collection := range phase {
			i, collection := i, collection
			var params models.FetchParams
			if plan.Params != nil {
				params = plan.Params(collection, snapshot)
			}
			group.Go(func() error {
				outcomes[i] = f.fetchOne(ctx, collection, params)
				return nil
			})
		}
		_ = group.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, collection := range phase {
			f.apply(snapshot, collection, outcomes[i])
		}
	}
	return snapshot, nil
}

func (f *EntityFetcher) fetchOne(ctx context.Context, collection models.Collection, params models.FetchParams) fetchOutcome {
	if f.store == nil {
		return fetchOutcome{failure: "collection store unavailable"}
	}
	start := time.Now()
	result, err := f.store.Fetch(ctx, collection, params)
	duration := time.Since(start)

	var outcome fetchOutcome
	switch {
	case err != nil:
		outcome.failure = err.Error()
	case result == nil:
		outcome.failure = "empty response"
	case !result.Success:
		outcome.failure = result.Error
		if outcome.failure == "" {
			outcome.failure = "request failed"
		}
	default:
		outcome.rows = result.Rows
	}
	f.metrics.ObserveCollectionFetch(string(collection), outcome.failure == "", duration)
	if outcome.failure != "" {
		f.logger.Warn("collection fetch failed",
			zap.String("collection", string(collection)),
			zap.String("reason", outcome.failure),
			zap.Duration("duration", duration),
		)
	}
	return outcome
}

func (f *EntityFetcher) apply(snapshot *models.Snapshot, collection models.Collection, outcome fetchOutcome) {
	if outcome.failure != "" {
		snapshot.Failures = append(snapshot.Failures, models.CollectionFailure{
			Collection: collection,
			Message:    fmt.Sprintf("failed to load %s: %s", collection, outcome.failure),
		})
	}
	switch collection {
	case models.CollectionClasses:
		snapshot.Classes = f.decoder.classes(outcome.rows)
	case models.CollectionStudents:
		snapshot.Students = f.decoder.students(outcome.rows)
	case models.CollectionAssignments:
		snapshot.Assignments = f.decoder.assignments(outcome.rows)
	case models.CollectionGrades:
		snapshot.Grades = f.decoder.grades(outcome.rows)
	case models.CollectionAttendance:
		snapshot.Attendance = f.decoder.attendance(outcome.rows)
	case models.CollectionGamification:
		snapshot.Gamification = f.decoder.gamification(outcome.rows)
	case models.CollectionBadges:
		snapshot.Badges = f.decoder.badges(outcome.rows)
	}
}
