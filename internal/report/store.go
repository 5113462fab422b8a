// internal/report/store.go
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"oss-tldr/internal/database"
	custom_errors "oss-tldr/internal/errors"
	"oss-tldr/internal/model"
	"oss-tldr/internal/timeframe"
)

// reportVersion marks rows written with the per-section layout.
const reportVersion = 2

// Key identifies the live report of a repository for a timeframe.
type Key struct {
	RepositoryID int64
	Timeframe    timeframe.Timeframe
}

// Store implements the report lifecycle and the per-section read/write primitives.
type Store struct {
	q      database.Querier
	policy FreshnessPolicy
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store. A nil policy means UniformPolicy(DefaultTTL).
func NewStore(q database.Querier, policy FreshnessPolicy, logger *slog.Logger) *Store {
	if policy == nil {
		policy = UniformPolicy(DefaultTTL)
	}
	return &Store{
		q:      q,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrCreate returns the most recently created report for the pair, creating
// an empty one stamped with the resolved range if none exists. Concurrent
// callers may both create a row; later reads pick the newest.
func (s *Store) GetOrCreate(ctx context.Context, repositoryID int64, tf timeframe.Timeframe) (database.Report, error) {
	key := Key{RepositoryID: repositoryID, Timeframe: tf}
	r, found, err := s.latest(ctx, key)
	if err != nil || found {
		return r, err
	}

	rng := tf.Resolve(s.now())
	s.logger.Info("Creating report", "repository_id", repositoryID, "timeframe", tf)
	r, err = s.q.CreateReport(ctx, database.CreateReportParams{
		RepositoryID:   repositoryID,
		Timeframe:      string(tf),
		TimeframeStart: pgtype.Timestamptz{Time: rng.Start, Valid: true},
		TimeframeEnd:   pgtype.Timestamptz{Time: rng.End, Valid: true},
		Version:        reportVersion,
	})
	if err != nil {
		return database.Report{}, fmt.Errorf("create report: %w", err)
	}
	return r, nil
}

func (s *Store) latest(ctx context.Context, key Key) (database.Report, bool, error) {
	r, err := s.q.GetLatestReport(ctx, database.GetLatestReportParams{
		RepositoryID: key.RepositoryID,
		Timeframe:    string(key.Timeframe),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Report{}, false, nil
	}
	if err != nil {
		return database.Report{}, false, fmt.Errorf("get latest report: %w", err)
	}
	return r, true, nil
}

// ReadItems returns the prs or issues section. found is false when the section
// is Missing: no report, never written, or older than the freshness threshold
// unless bypass is set.
func (s *Store) ReadItems(ctx context.Context, key Key, section model.Section, bypass bool) ([]model.ActivityItem, bool, error) {
	raw, found, err := s.read(ctx, key, section, bypass)
	if err != nil || !found {
		return nil, false, err
	}
	items := []model.ActivityItem{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s section: %w", section, err)
	}
	return items, true, nil
}

// ReadPeople returns the people section.
func (s *Store) ReadPeople(ctx context.Context, key Key, bypass bool) ([]model.Contributor, bool, error) {
	raw, found, err := s.read(ctx, key, model.SectionPeople, bypass)
	if err != nil || !found {
		return nil, false, err
	}
	people := []model.Contributor{}
	if err := json.Unmarshal(raw, &people); err != nil {
		return nil, false, fmt.Errorf("decode people section: %w", err)
	}
	return people, true, nil
}

// ReadTLDR returns the tldr section.
func (s *Store) ReadTLDR(ctx context.Context, key Key, bypass bool) (string, bool, error) {
	raw, found, err := s.read(ctx, key, model.SectionTLDR, bypass)
	if err != nil || !found {
		return "", false, err
	}
	return string(raw), true, nil
}

func (s *Store) read(ctx context.Context, key Key, section model.Section, bypass bool) ([]byte, bool, error) {
	r, found, err := s.latest(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	payload, generatedAt := sectionColumns(r, section)
	if payload == nil {
		return nil, false, nil
	}
	if bypass {
		return payload, true, nil
	}
	if !generatedAt.Valid {
		return nil, false, nil
	}

	age := s.now().Sub(generatedAt.Time)
	if threshold := s.policy.Threshold(key.Timeframe); age > threshold {
		s.logger.Debug("Section expired", "report_id", r.ID, "section", section, "age", age.String(), "threshold", threshold.String())
		return nil, false, nil
	}
	return payload, true, nil
}

func sectionColumns(r database.Report, section model.Section) ([]byte, pgtype.Timestamptz) {
	switch section {
	case model.SectionPRs:
		return r.Prs, r.PrsGeneratedAt
	case model.SectionIssues:
		return r.Issues, r.IssuesGeneratedAt
	case model.SectionPeople:
		return r.People, r.PeopleGeneratedAt
	case model.SectionTLDR:
		if !r.TldrText.Valid {
			return nil, r.TldrGeneratedAt
		}
		return []byte(r.TldrText.String), r.TldrGeneratedAt
	default:
		return nil, pgtype.Timestamptz{}
	}
}

// WriteItems replaces the prs or issues section of a report and stamps it.
func (s *Store) WriteItems(ctx context.Context, reportID int64, section model.Section, items []model.ActivityItem) (database.Report, error) {
	if items == nil {
		items = []model.ActivityItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return database.Report{}, fmt.Errorf("encode %s section: %w", section, err)
	}

	stamp := s.stamp()
	var r database.Report
	switch section {
	case model.SectionPRs:
		r, err = s.q.UpdateReportPRs(ctx, database.UpdateReportPRsParams{ID: reportID, Prs: raw, PrsGeneratedAt: stamp})
	case model.SectionIssues:
		r, err = s.q.UpdateReportIssues(ctx, database.UpdateReportIssuesParams{ID: reportID, Issues: raw, IssuesGeneratedAt: stamp})
	default:
		return database.Report{}, fmt.Errorf("section %q does not hold activity items", section)
	}
	return r, s.writeErr(section, err)
}

// WritePeople replaces the people section of a report and stamps it.
func (s *Store) WritePeople(ctx context.Context, reportID int64, people []model.Contributor) (database.Report, error) {
	if people == nil {
		people = []model.Contributor{}
	}
	raw, err := json.Marshal(people)
	if err != nil {
		return database.Report{}, fmt.Errorf("encode people section: %w", err)
	}
	r, err := s.q.UpdateReportPeople(ctx, database.UpdateReportPeopleParams{ID: reportID, People: raw, PeopleGeneratedAt: s.stamp()})
	return r, s.writeErr(model.SectionPeople, err)
}

// WriteTLDR replaces the tldr section of a report and stamps it.
func (s *Store) WriteTLDR(ctx context.Context, reportID int64, text string) (database.Report, error) {
	r, err := s.q.UpdateReportTLDR(ctx, database.UpdateReportTLDRParams{
		ID:              reportID,
		TldrText:        pgtype.Text{String: text, Valid: true},
		TldrGeneratedAt: s.stamp(),
	})
	return r, s.writeErr(model.SectionTLDR, err)
}

func (s *Store) stamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now().UTC(), Valid: true}
}

func (s *Store) writeErr(section model.Section, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return custom_errors.ErrReportNotFound
	}
	return fmt.Errorf("write %s section: %w", section, err)
}
