// Package boxes applies the submit rules for dessert boxes before they reach
// storage.
package boxes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/models"
)

// Policy decides what happens to a caller-supplied total.
type Policy string

const (
	// PolicyVerify recomputes the total from the current catalog and rejects
	// submissions whose total differs.
	PolicyVerify Policy = "verify"
	// PolicyTrust stores the caller's total as given.
	PolicyTrust Policy = "trust"
)

// ValidationError carries every user-correctable problem with a submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Repository persists boxes.
type Repository interface {
	List(ctx context.Context) ([]models.DessertBox, error)
	Get(ctx context.Context, id uint) (*models.DessertBox, error)
	Create(ctx context.Context, box *models.DessertBox) error
	Replace(ctx context.Context, id uint, box models.DessertBox) (*models.DessertBox, error)
	Delete(ctx context.Context, id uint) error
}

// CatalogSource provides the catalog used to check submissions.
type CatalogSource interface {
	Snapshot(ctx context.Context) (pricing.Catalog, error)
}

// refresher is implemented by catalog sources that can bypass their cache.
type refresher interface {
	Refresh(ctx context.Context) (pricing.Catalog, error)
}

// Submission is the payload for create and replace.
type Submission struct {
	DessertTypeID uint             `json:"dessert_type_id"`
	FlavorID      uint             `json:"flavor_id"`
	PackagingID   uint             `json:"packaging_id"`
	DietaryID     uint             `json:"dietary_id"`
	ThemeID       uint             `json:"theme_id"`
	Quantity      int              `json:"quantity"`
	CustomMessage *string          `json:"custom_message"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
}

// Selection returns the pricing view of the submission.
func (s Submission) Selection() pricing.Selection {
	sel := pricing.Selection{
		DessertTypeID: s.DessertTypeID,
		FlavorID:      s.FlavorID,
		PackagingID:   s.PackagingID,
		DietaryID:     s.DietaryID,
		ThemeID:       s.ThemeID,
		Quantity:      s.Quantity,
	}
	if s.CustomMessage != nil {
		sel.CustomMessage = *s.CustomMessage
	}
	return sel
}

// Service validates submissions and forwards them to the repository.
type Service struct {
	repo    Repository
	catalog CatalogSource
	policy  Policy
}

// NewService builds a Service. An empty policy defaults to PolicyVerify.
func NewService(repo Repository, catalog CatalogSource, policy Policy) *Service {
	if policy == "" {
		policy = PolicyVerify
	}
	return &Service{repo: repo, catalog: catalog, policy: policy}
}

// Policy reports the configured total handling.
func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) List(ctx context.Context) ([]models.DessertBox, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.DessertBox, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	applog.Info(ctx, "dessert box deleted", "id", id)
	return nil
}

// Create validates the submission and stores a new box.
func (s *Service) Create(ctx context.Context, sub Submission) (*models.DessertBox, error) {
	box, err := s.prepare(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &box); err != nil {
		return nil, err
	}
	applog.Info(ctx, "dessert box created", "id", box.ID, "total", box.TotalPrice.StringFixed(2))
	stored, err := s.repo.Get(ctx, box.ID)
	if err != nil {
		return nil, fmt.Errorf("reload created box: %w", err)
	}
	return stored, nil
}

// Replace validates the submission and overwrites an existing box.
func (s *Service) Replace(ctx context.Context, id uint, sub Submission) (*models.DessertBox, error) {
	box, err := s.prepare(ctx, sub)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Replace(ctx, id, box)
	if err != nil {
		return nil, err
	}
	applog.Info(ctx, "dessert box replaced", "id", id, "total", updated.TotalPrice.StringFixed(2))
	return updated, nil
}

func (s *Service) prepare(ctx context.Context, sub Submission) (models.DessertBox, error) {
	if missing := missingFields(sub); len(missing) > 0 {
		return models.DessertBox{}, &ValidationError{Messages: []string{
			fmt.Sprintf("Missing required fields: %s are required", strings.Join(missing, ", ")),
		}}
	}

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return models.DessertBox{}, err
	}

	sel := sub.Selection()
	total := pricing.Round(*sub.TotalPrice)
	if s.policy == PolicyVerify && !pricing.ComputePrice(sel, catalog).TotalPrice.Equal(total) {
		// The cached snapshot may predate a price change made elsewhere.
		if fresh, ok := s.catalog.(refresher); ok {
			if catalog, err = fresh.Refresh(ctx); err != nil {
				return models.DessertBox{}, err
			}
		}
	}

	if violations := pricing.Validate(sel, catalog); len(violations) > 0 {
		applog.Debug(ctx, "dessert box rejected", "violations", violations)
		return models.DessertBox{}, &ValidationError{Messages: violations}
	}

	if s.policy == PolicyVerify {
		expected := pricing.ComputePrice(sel, catalog).TotalPrice
		if !expected.Equal(total) {
			applog.Debug(ctx, "dessert box total mismatch", "submitted", total.StringFixed(2), "expected", expected.StringFixed(2))
			return models.DessertBox{}, &ValidationError{Messages: []string{
				fmt.Sprintf("Total price %s does not match the current price %s", total.StringFixed(2), expected.StringFixed(2)),
			}}
		}
	}

	var message *string
	if sub.CustomMessage != nil {
		if trimmed := strings.TrimSpace(*sub.CustomMessage); trimmed != "" {
			message = &trimmed
		}
	}

	return models.DessertBox{
		DessertTypeID: sub.DessertTypeID,
		FlavorID:      sub.FlavorID,
		PackagingID:   sub.PackagingID,
		DietaryID:     sub.DietaryID,
		ThemeID:       sub.ThemeID,
		Quantity:      sub.Quantity,
		CustomMessage: message,
		TotalPrice:    total,
	}, nil
}

func missingFields(sub Submission) []string {
	var missing []string
	if sub.DessertTypeID == 0 {
		missing = append(missing, "dessert_type_id")
	}
	if sub.FlavorID == 0 {
		missing = append(missing, "flavor_id")
	}
	if sub.PackagingID == 0 {
		missing = append(missing, "packaging_id")
	}
	if sub.DietaryID == 0 {
		missing = append(missing, "dietary_id")
	}
	if sub.ThemeID == 0 {
		missing = append(missing, "theme_id")
	}
	if sub.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if sub.TotalPrice == nil || !sub.TotalPrice.IsPositive() {
		missing = append(missing, "total_price")
	}
	return missing
}
