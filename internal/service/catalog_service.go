package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/mentorhive/achievements-backend/internal/model"
	"github.com/mentorhive/achievements-backend/internal/repository"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

// CatalogService manages the achievement catalog itself. Only the admin
// surface goes through here; runtime reads use AchievementService.
type CatalogService interface {
	Create(ctx context.Context, id, title, description, category string, points uint) (*model.Achievement, error)
	Update(ctx context.Context, id, title, description, category string, points uint) (*model.Achievement, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Achievement, error)
}

type catalogService struct {
	repo repository.AchievementRepository
}

func NewCatalogService(repo repository.AchievementRepository) CatalogService {
	return &catalogService{repo: repo}
}

func validateDefinition(id, title, description, category string) error {
	if !slugPattern.MatchString(id) {
		return errors.New("id must be a lowercase slug")
	}
	if title == "" || len(title) > 120 {
		return errors.New("invalid title")
	}
	if description == "" {
		return errors.New("invalid description")
	}
	if category == "" {
		return errors.New("category is required")
	}
	return nil
}

func (s *catalogService) Create(ctx context.Context, id, title, description, category string, points uint) (*model.Achievement, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if err := validateDefinition(id, title, description, category); err != nil {
		return nil, err
	}
	a := &model.Achievement{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
		Points:      points,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *catalogService) Update(ctx context.Context, id, title, description, category string, points uint) (*model.Achievement, error) {
	a, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if err := validateDefinition(a.ID, title, description, category); err != nil {
		return nil, err
	}
	a.Title = title
	a.Description = description
	a.Category = category
	a.Points = points
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *catalogService) List(ctx context.Context) ([]model.Achievement, error) {
	return s.repo.List(ctx)
}
