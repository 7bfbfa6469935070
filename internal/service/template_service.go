package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/marksheet-builder/internal/model"
)

// StudentSource lists the students owned by a user.
type StudentSource interface {
	StudentsByUser(ctx context.Context, userID string) ([]model.Student, error)
}

// OptionCache stores the template name options of a user.
type OptionCache interface {
	GetTemplateOptions(ctx context.Context, userID string) ([]string, bool, error)
	SetTemplateOptions(ctx context.Context, userID string, names []string) error
}

// TemplateService loads the class (template name) options a user can pick.
type TemplateService struct {
	students StudentSource
	cache    OptionCache
	log      zerolog.Logger
}

// NewTemplateService creates a TemplateService. cache may be nil.
func NewTemplateService(students StudentSource, cache OptionCache, log zerolog.Logger) *TemplateService {
	return &TemplateService{
		students: students,
		cache:    cache,
		log:      log.With().Str("component", "template_service").Logger(),
	}
}

// TemplateNames returns the distinct temp_name values of the user's
// students in first-seen order. Lookup failures are logged and yield an
// empty list, never an error.
func (s *TemplateService) TemplateNames(ctx context.Context, userID string) []string {
	if userID == "" {
		return []string{}
	}

	if s.cache != nil {
		names, ok, err := s.cache.GetTemplateOptions(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("template option cache read failed")
		} else if ok {
			return names
		}
	}

	students, err := s.students.StudentsByUser(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("error fetching templates")
		return []string{}
	}

	names := UniqueTemplateNames(students)

	if s.cache != nil {
		if err := s.cache.SetTemplateOptions(ctx, userID, names); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("template option cache write failed")
		}
	}
	return names
}

// UniqueTemplateNames dedupes the temp_name of each student, keeping the
// order of first occurrence.
func UniqueTemplateNames(students []model.Student) []string {
	seen := make(map[string]struct{}, len(students))
	names := make([]string, 0, len(students))
	for _, st := range students {
		if _, ok := seen[st.TempName]; ok {
			continue
		}
		seen[st.TempName] = struct{}{}
		names = append(names, st.TempName)
	}
	return names
}
