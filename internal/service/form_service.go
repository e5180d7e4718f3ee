package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sefazor/brandkit-backend/internal/apperrors"
	"github.com/sefazor/brandkit-backend/internal/formtype"
	"github.com/sefazor/brandkit-backend/internal/models"
	"github.com/sefazor/brandkit-backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// FormService tracks how far each user got through each questionnaire.
type FormService struct {
	tx       Transactor
	subs     FormSubmissionStore
	registry *formtype.Registry
	log      *zap.Logger
	now      func() time.Time
}

func NewFormService(tx Transactor, subs FormSubmissionStore, registry *formtype.Registry, log *zap.Logger) *FormService {
	return &FormService{
		tx:       tx,
		subs:     subs,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

// ProgressPercentage is step/total as a percentage rounded to two places,
// capped at 100.
func ProgressPercentage(step, total int) float64 {
	if total <= 0 || step <= 0 {
		return 0
	}
	p := math.Round(float64(step)/float64(total)*100*100) / 100
	return math.Min(p, 100)
}

func (s *FormService) FormTypes() []*formtype.Definition {
	return s.registry.All()
}

func (s *FormService) Definition(formType string) (*formtype.Definition, error) {
	def, ok := s.registry.Get(formType)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown form type %q", formType))
	}
	return def, nil
}

// SaveStep merges fields into the stored answers and moves the submission to
// step. The step is taken as given; ordering is the caller's concern.
func (s *FormService) SaveStep(ctx context.Context, userID uint, formType string, step int, fields map[string]interface{}) (*models.FormProgress, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	def, err := s.Definition(formType)
	if err != nil {
		return nil, err
	}
	if step < 1 || step > def.TotalSteps() {
		return nil, apperrors.Validation(fmt.Sprintf("step must be between 1 and %d", def.TotalSteps()))
	}
	if problems := def.Validate(fields); len(problems) > 0 {
		return nil, apperrors.ValidationFields("invalid form fields", problems)
	}

	var saved *models.FormSubmission
	save := func() error {
		return s.tx.Transaction(ctx, func(ctx context.Context) error {
			sub, err := s.subs.FindForUpdate(ctx, userID, formType)
			created := false
			if apperrors.Is(err, apperrors.ErrNotFound) {
				sub = &models.FormSubmission{
					UserID:   userID,
					FormType: formType,
					FormData: datatypes.JSONMap{},
				}
				created = true
			} else if err != nil {
				return err
			}

			applyStep(sub, def, step, fields, s.now())
			saved = sub
			if created {
				return s.subs.Create(ctx, sub)
			}
			return s.subs.Update(ctx, sub)
		})
	}

	err = save()
	if apperrors.Is(err, apperrors.ErrConflict) {
		// another request created the row first; it exists now
		err = save()
	}
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("form step saved",
		zap.Uint("user_id", userID),
		zap.String("form_type", formType),
		zap.Int("step", step),
		zap.Bool("completed", saved.IsCompleted),
	)
	return progressOf(saved, def), nil
}

func applyStep(sub *models.FormSubmission, def *formtype.Definition, step int, fields map[string]interface{}, now time.Time) {
	if sub.FormData == nil {
		sub.FormData = datatypes.JSONMap{}
	}
	for k, v := range fields {
		sub.FormData[k] = v
	}
	sub.SchemaVersion = def.SchemaVersion
	sub.CurrentStep = step
	sub.ProgressPercentage = ProgressPercentage(step, def.TotalSteps())
	sub.IsCompleted = step >= def.TotalSteps()
	if !sub.IsCompleted {
		sub.CompletedAt = nil
	} else if sub.CompletedAt == nil {
		sub.CompletedAt = &now
	}
}

// GetFormData returns the stored submission; found is false when the user
// has never saved a step.
func (s *FormService) GetFormData(ctx context.Context, userID uint, formType string) (sub *models.FormSubmission, found bool, err error) {
	if userID == 0 {
		return nil, false, apperrors.Validation("user id is required")
	}
	if _, err := s.Definition(formType); err != nil {
		return nil, false, err
	}

	sub, err = s.subs.Find(ctx, userID, formType)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sub, true, nil
}

// CompleteForm marks the submission finished regardless of which fields
// were filled in.
func (s *FormService) CompleteForm(ctx context.Context, userID uint, formType string) (*models.FormProgress, error) {
	if userID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	def, err := s.Definition(formType)
	if err != nil {
		return nil, err
	}

	var sub *models.FormSubmission
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		sub, err = s.subs.FindForUpdate(ctx, userID, formType)
		if err != nil {
			return err
		}
		now := s.now()
		sub.CurrentStep = def.TotalSteps()
		sub.ProgressPercentage = 100
		sub.IsCompleted = true
		if sub.CompletedAt == nil {
			sub.CompletedAt = &now
		}
		return s.subs.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("form completed",
		zap.Uint("user_id", userID),
		zap.String("form_type", formType),
	)
	return progressOf(sub, def), nil
}

func progressOf(sub *models.FormSubmission, def *formtype.Definition) *models.FormProgress {
	return &models.FormProgress{
		FormType:           sub.FormType,
		CurrentStep:        sub.CurrentStep,
		TotalSteps:         def.TotalSteps(),
		ProgressPercentage: sub.ProgressPercentage,
		IsCompleted:        sub.IsCompleted,
	}
}
