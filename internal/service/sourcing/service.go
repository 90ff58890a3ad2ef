// Package sourcing covers supplier discovery and the RFQ to quote lifecycle of a project.
package sourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/pkg/logger"
	"dealroom/pkg/rbac"
)

const (
	SuggestLimit    = 5
	DefaultCurrency = "USD"
)

var (
	ErrProjectNotOwned  = errors.New("Project not found or not owned by you")
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrInvalidRFQ       = errors.New("rfq needs a positive quantity, materials and at least one supplier")
	ErrInvalidOffer     = errors.New("quote needs a non-negative price and a positive lead time")
	ErrInvalidStatus    = errors.New("status must be shortlisted|rejected")
)

// Caller identifies who is acting on a project's quotes.
type Caller struct {
	UserID string
	Role   string
}

type Service struct {
	projects  repository.ProjectRepository
	suppliers repository.SupplierRepository
	quotes    repository.QuoteRepository
	logger    *zap.Logger
}

func NewService(projects repository.ProjectRepository, suppliers repository.SupplierRepository, quotes repository.QuoteRepository, logger *zap.Logger) *Service {
	return &Service{projects: projects, suppliers: suppliers, quotes: quotes, logger: logger}
}

func (s *Service) SearchSuppliers(ctx context.Context, f model.SupplierFilter) ([]model.Supplier, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Location = strings.TrimSpace(f.Location)
	f.Query = strings.TrimSpace(f.Query)
	out, err := s.suppliers.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("searching suppliers: %w", err)
	}
	return out, nil
}

// SuggestSuppliers returns the best rated suppliers for a category. The project only scopes the route.
func (s *Service) SuggestSuppliers(ctx context.Context, category string) ([]model.Supplier, error) {
	out, err := s.suppliers.Suggest(ctx, strings.TrimSpace(category), SuggestLimit)
	if err != nil {
		return nil, fmt.Errorf("suggesting suppliers: %w", err)
	}
	return out, nil
}

// RequestQuotes sends one RFQ to every supplier, creating a requested quote for each.
func (s *Service) RequestQuotes(ctx context.Context, caller Caller, projectID string, rfq model.RFQ, supplierIDs []string) ([]*model.Quote, error) {
	if rfq.Quantity <= 0 || strings.TrimSpace(rfq.Materials) == "" || len(supplierIDs) == 0 {
		return nil, ErrInvalidRFQ
	}
	if rfq.TargetCost != nil && *rfq.TargetCost < 0 {
		return nil, ErrInvalidRFQ
	}
	for _, id := range supplierIDs {
		if uuid.Validate(id) != nil {
			return nil, ErrSupplierNotFound
		}
	}
	if _, err := s.ownedProject(ctx, caller, projectID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(rfq)
	if err != nil {
		return nil, err
	}
	quotes := make([]*model.Quote, 0, len(supplierIDs))
	for _, supplierID := range supplierIDs {
		quotes = append(quotes, &model.Quote{
			ID:             uuid.NewString(),
			ProjectID:      projectID,
			SupplierID:     supplierID,
			RFQ:            body,
			Status:         model.QuoteRequested,
			AttachmentURLs: []string{},
		})
	}

	if err := s.quotes.CreateBatch(ctx, quotes); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("creating quotes: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("RFQ sent",
		zap.String("project_id", projectID),
		zap.Int("suppliers", len(quotes)),
	)
	return quotes, nil
}

func (s *Service) ListQuotes(ctx context.Context, caller Caller, projectID string) ([]model.Quote, error) {
	if _, err := s.ownedProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	out, err := s.quotes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	return out, nil
}

// SubmitQuote records a supplier's offer on their quote and marks it received.
func (s *Service) SubmitQuote(ctx context.Context, caller Caller, quoteID string, offer model.QuoteOffer) (*model.Quote, error) {
	if offer.Price < 0 || offer.LeadTimeDays <= 0 {
		return nil, ErrInvalidOffer
	}
	if strings.TrimSpace(offer.Currency) == "" {
		offer.Currency = DefaultCurrency
	}
	if _, err := s.ownedQuote(ctx, caller, quoteID); err != nil {
		return nil, err
	}

	body, err := json.Marshal(offer)
	if err != nil {
		return nil, err
	}
	q, err := s.quotes.Submit(ctx, quoteID, body)
	if err != nil {
		return nil, fmt.Errorf("submitting quote: %w", err)
	}
	return q, nil
}

// SetStatus shortlists or rejects a quote.
func (s *Service) SetStatus(ctx context.Context, caller Caller, quoteID, status string) (*model.Quote, error) {
	if status != model.QuoteShortlisted && status != model.QuoteRejected {
		return nil, ErrInvalidStatus
	}
	if _, err := s.ownedQuote(ctx, caller, quoteID); err != nil {
		return nil, err
	}

	q, err := s.quotes.UpdateStatus(ctx, quoteID, status)
	if err != nil {
		return nil, fmt.Errorf("updating quote: %w", err)
	}
	logger.WithTrace(ctx, s.logger).Info("Quote status changed", zap.String("quote_id", quoteID), zap.String("status", status))
	return q, nil
}

// ownedProject admits the project owner and admins; everyone else sees the project as absent.
func (s *Service) ownedProject(ctx context.Context, caller Caller, projectID string) (*model.Project, error) {
	if uuid.Validate(projectID) != nil {
		return nil, ErrProjectNotOwned
	}
	p, err := s.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotOwned
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p.OwnerID != caller.UserID && caller.Role != rbac.RoleAdmin {
		return nil, ErrProjectNotOwned
	}
	return p, nil
}

func (s *Service) ownedQuote(ctx context.Context, caller Caller, quoteID string) (*model.Quote, error) {
	if uuid.Validate(quoteID) != nil {
		return nil, ErrQuoteNotFound
	}
	q, err := s.quotes.Get(ctx, quoteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading quote: %w", err)
	}
	if _, err := s.ownedProject(ctx, caller, q.ProjectID); errors.Is(err, ErrProjectNotOwned) {
		return nil, ErrQuoteNotFound
	} else if err != nil {
		return nil, err
	}
	return q, nil
}
