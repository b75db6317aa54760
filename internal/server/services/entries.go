package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/server/config"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/repomanager"
)

// ChartLabelLayout renders a chart point as day/month.
const ChartLabelLayout = "02/01"

type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	// loc is the zone chart labels are printed in; pages print entry dates
	// in the server's local zone as well.
	loc *time.Location
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m, loc: time.Local}
}

// ParseMood converts a submitted form value into a mood rating.
func ParseMood(raw string) (int, error) {
	mood, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: mood must be a number", common.ErrorValidation)
	}
	if mood < common.MinMood || mood > common.MaxMood {
		return 0, fmt.Errorf("%w: mood must be between %d and %d", common.ErrorValidation, common.MinMood, common.MaxMood)
	}
	return mood, nil
}

// Append validates and stores a new entry for accountID.
func (s *EntryService) Append(ctx context.Context, accountID, content, moodRaw string) (*models.Entry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}
	mood, err := ParseMood(moodRaw)
	if err != nil {
		return nil, err
	}

	entry, err := s.repomanager.Entries(s.db).Create(ctx, &models.Entry{
		AccountID: accountID,
		Content:   content,
		Mood:      mood,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return entry, nil
}

// History lists the account's entries newest first.
func (s *EntryService) History(ctx context.Context, accountID string) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).ListByAccount(ctx, accountID, models.Descending)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// Series returns the last window entries oldest first as chart points.
// window is clamped to the supported chart range.
func (s *EntryService) Series(ctx context.Context, accountID string, window int) ([]models.MoodPoint, error) {
	window = max(config.MinChartWindow, min(window, config.MaxChartWindow))

	list, err := s.repomanager.Entries(s.db).ListByAccount(ctx, accountID, models.Ascending)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	if len(list) > window {
		list = list[len(list)-window:]
	}

	points := make([]models.MoodPoint, 0, len(list))
	for _, e := range list {
		points = append(points, models.MoodPoint{
			Label: e.CreatedAt.In(s.loc).Format(ChartLabelLayout),
			Mood:  e.Mood,
		})
	}
	return points, nil
}

// MoodCounts reports how many entries carry each rating, one element per
// rating from MinMood to MaxMood including zeros.
func (s *EntryService) MoodCounts(ctx context.Context, accountID string) ([]models.MoodCount, error) {
	counts, err := s.repomanager.Entries(s.db).MoodCounts(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("error counting moods: %w", err)
	}

	out := make([]models.MoodCount, 0, common.MaxMood-common.MinMood+1)
	for m := common.MinMood; m <= common.MaxMood; m++ {
		out = append(out, models.MoodCount{Mood: m, Count: counts[m]})
	}
	return out, nil
}
