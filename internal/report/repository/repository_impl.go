package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/safetydesk/safetydesk/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reports (
			id, event_id, reporter_id, assigned_to_id, title, description,
			severity, state, resolution_notes, revision, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.EventID,
		report.ReporterID,
		report.AssignedToID,
		report.Title,
		report.Description,
		report.Severity,
		report.State,
		report.ResolutionNotes,
		report.Revision,
		report.CreatedAt,
		report.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, eventID, reportID snowflake.ID) (*domain.Report, error) {
	var report domain.Report
	err := db.WithContext(ctx).
		Where("id = ? AND event_id = ?", reportID, eventID).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Report, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("event_id = ?", filter.EventID)

	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("id < ?", filter.Cursor.ID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var reports []*domain.Report
	if err := stmt.Order("id desc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repo) UpdateState(ctx context.Context, db *gorm.DB, report *domain.Report, prevRevision int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE reports SET
			state = ?,
			assigned_to_id = ?,
			resolution_notes = ?,
			revision = ?,
			updated_at = ?
		WHERE id = ? AND revision = ?`,
		report.State,
		report.AssignedToID,
		report.ResolutionNotes,
		report.Revision,
		report.UpdatedAt,
		report.ID,
		prevRevision,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertComment(ctx context.Context, db *gorm.DB, comment *domain.ReportComment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO report_comments (id, report_id, author_id, body, internal, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.ReportID,
		comment.AuthorID,
		comment.Body,
		comment.Internal,
		comment.CreatedAt,
	).Error
}

func (r *repo) ListComments(ctx context.Context, db *gorm.DB, reportID snowflake.ID, includeInternal bool) ([]*domain.ReportComment, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.ReportComment{}).
		Where("report_id = ?", reportID)
	if !includeInternal {
		stmt = stmt.Where("internal = ?", false)
	}

	var comments []*domain.ReportComment
	if err := stmt.Order("created_at asc, id asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
