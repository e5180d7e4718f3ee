package repository

import (
	"context"

	"github.com/sefazor/brandkit-backend/internal/models"
	"gorm.io/gorm"
)

type FormSubmissionRepository struct {
	db *gorm.DB
}

func NewFormSubmissionRepository(db *gorm.DB) *FormSubmissionRepository {
	return &FormSubmissionRepository{db: db}
}

func (r *FormSubmissionRepository) Find(ctx context.Context, userID uint, formType string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	err := conn(ctx, r.db).
		Where("user_id = ? AND form_type = ?", userID, formType).
		First(&sub).Error
	if err != nil {
		return nil, notFound(err, "Form submission")
	}
	return &sub, nil
}

// FindForUpdate locks the row until the surrounding transaction ends.
func (r *FormSubmissionRepository) FindForUpdate(ctx context.Context, userID uint, formType string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	err := forUpdate(conn(ctx, r.db)).
		Where("user_id = ? AND form_type = ?", userID, formType).
		First(&sub).Error
	if err != nil {
		return nil, notFound(err, "Form submission")
	}
	return &sub, nil
}

func (r *FormSubmissionRepository) Create(ctx context.Context, sub *models.FormSubmission) error {
	return translate(conn(ctx, r.db).Create(sub).Error)
}

func (r *FormSubmissionRepository) Update(ctx context.Context, sub *models.FormSubmission) error {
	return translate(conn(ctx, r.db).Save(sub).Error)
}

func (r *FormSubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.FormSubmission, int64, error) {
	q := conn(ctx, r.db).Model(&models.FormSubmission{})
	if filter.FormType != "" {
		q = q.Where("form_type = ?", filter.FormType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset, limit := paginate(filter.Page, filter.PageSize)
	var subs []models.FormSubmission
	err := q.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, total, translate(err)
}

func (r *FormSubmissionRepository) StatsByFormType(ctx context.Context) ([]models.FormTypeStats, error) {
	var stats []models.FormTypeStats
	err := conn(ctx, r.db).Model(&models.FormSubmission{}).
		Select("form_type, COUNT(*) AS started, SUM(CASE WHEN is_completed THEN 1 ELSE 0 END) AS completed").
		Group("form_type").
		Order("form_type").
		Scan(&stats).Error
	return stats, translate(err)
}
