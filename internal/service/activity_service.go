package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// ActivityService exposes the send activity log.
type ActivityService struct {
	activity repository.ActivityRepository
	log      *logger.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(activity repository.ActivityRepository, log *logger.Logger) *ActivityService {
	return &ActivityService{
		activity: activity,
		log:      log.WithComponent("activity_service"),
	}
}

// List returns activity records newest first.
func (s *ActivityService) List(ctx context.Context, filter repository.ActivityFilter) ([]model.ActivityRecord, error) {
	records, err := s.activity.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.ActivityRecord{}
	}
	return records, nil
}

// Stats aggregates the whole log for the dashboard.
func (s *ActivityService) Stats(ctx context.Context) (*model.ActivityStats, error) {
	records, err := s.activity.List(ctx, repository.ActivityFilter{})
	if err != nil {
		return nil, err
	}

	var stats model.ActivityStats
	for _, rec := range records {
		switch rec.Channel {
		case model.ChannelEmail:
			stats.TotalEmail++
		case model.ChannelSMS:
			stats.TotalSMS++
		case model.ChannelAzureSMS:
			stats.TotalAzureSMS++
		}
		stats.Success += rec.Success
		stats.Failed += rec.Failed
	}
	if total := stats.Success + stats.Failed; total > 0 {
		stats.SuccessRate = float64(stats.Success) / float64(total) * 100
	}
	return &stats, nil
}

// ExportJSON writes the matching records, newest first, as indented JSON.
func (s *ActivityService) ExportJSON(ctx context.Context, w io.Writer, filter repository.ActivityFilter) error {
	records, err := s.List(ctx, filter)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ExportCSV writes the matching records, newest first, as CSV.
func (s *ActivityService) ExportCSV(ctx context.Context, w io.Writer, filter repository.ActivityFilter) error {
	records, err := s.activity.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "type", "user", "subject", "recipients", "recipient_list", "success", "failed", "timestamp"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.ID,
			string(rec.Channel),
			rec.User,
			rec.Subject,
			strconv.Itoa(rec.Recipients),
			strings.Join(rec.RecipientList, "; "),
			strconv.Itoa(rec.Success),
			strconv.Itoa(rec.Failed),
			rec.Timestamp.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Clear wipes the activity log.
func (s *ActivityService) Clear(ctx context.Context) error {
	if err := s.activity.Clear(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("activity log cleared")
	return nil
}
