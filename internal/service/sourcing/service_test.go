package sourcing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/repository"
	"dealroom/internal/repository/mocks"
	"dealroom/pkg/rbac"
)

const (
	projectID = "0b7f4f8e-0d7a-4a51-9d1e-2f7c3c0e5a10"
	quoteID   = "9a3e2c51-6b7d-4f0e-8c2a-1d5b4e6f7a80"
	supplierA = "3c2d1e0f-aaaa-4bbb-8ccc-111111111111"
	supplierB = "3c2d1e0f-aaaa-4bbb-8ccc-222222222222"
)

var (
	owner    = Caller{UserID: "owner", Role: rbac.RoleFounder}
	stranger = Caller{UserID: "someone", Role: rbac.RoleFounder}
	admin    = Caller{UserID: "root", Role: rbac.RoleAdmin}
)

type fixture struct {
	svc       *Service
	projects  *mocks.ProjectRepository
	suppliers *mocks.SupplierRepository
	quotes    *mocks.QuoteRepository
}

func newFixture() fixture {
	f := fixture{
		projects:  &mocks.ProjectRepository{},
		suppliers: &mocks.SupplierRepository{},
		quotes:    &mocks.QuoteRepository{},
	}
	f.projects.On("Get", mock.Anything, projectID).Return(&model.Project{ID: projectID, OwnerID: "owner"}, nil).Maybe()
	f.svc = NewService(f.projects, f.suppliers, f.quotes, zap.NewNop())
	return f
}

func TestRequestQuotes_FansOutOnePerSupplier(t *testing.T) {
	f := newFixture()
	f.quotes.On("CreateBatch", mock.Anything, mock.MatchedBy(func(qs []*model.Quote) bool {
		return len(qs) == 2 && qs[0].SupplierID == supplierA && qs[1].SupplierID == supplierB &&
			qs[0].Status == model.QuoteRequested && qs[0].ProjectID == projectID && qs[0].ID != qs[1].ID
	})).Return(nil).Once()

	got, err := f.svc.RequestQuotes(context.Background(), owner, projectID, model.RFQ{Quantity: 100, Materials: "steel"}, []string{supplierA, supplierB})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var rfq model.RFQ
	require.NoError(t, json.Unmarshal(got[0].RFQ, &rfq))
	assert.Equal(t, 100, rfq.Quantity)
	assert.Equal(t, "steel", rfq.Materials)
	f.quotes.AssertExpectations(t)
}

func TestRequestQuotes_Rejections(t *testing.T) {
	f := newFixture()
	f.projects.On("Get", mock.Anything, "00000000-0000-4000-8000-000000000000").Return(nil, repository.ErrNotFound)
	f.quotes.On("CreateBatch", mock.Anything, mock.Anything).Return(repository.ErrNotFound).Once()
	ctx := context.Background()
	rfq := model.RFQ{Quantity: 1, Materials: "wood"}

	_, err := f.svc.RequestQuotes(ctx, owner, projectID, model.RFQ{Quantity: 0, Materials: "wood"}, []string{supplierA})
	assert.ErrorIs(t, err, ErrInvalidRFQ)

	_, err = f.svc.RequestQuotes(ctx, owner, projectID, rfq, nil)
	assert.ErrorIs(t, err, ErrInvalidRFQ)

	_, err = f.svc.RequestQuotes(ctx, stranger, projectID, rfq, []string{supplierA})
	assert.ErrorIs(t, err, ErrProjectNotOwned)

	_, err = f.svc.RequestQuotes(ctx, owner, "00000000-0000-4000-8000-000000000000", rfq, []string{supplierA})
	assert.ErrorIs(t, err, ErrProjectNotOwned)

	_, err = f.svc.RequestQuotes(ctx, owner, "not-a-uuid", rfq, []string{supplierA})
	assert.ErrorIs(t, err, ErrProjectNotOwned)

	_, err = f.svc.RequestQuotes(ctx, owner, projectID, rfq, []string{"nope"})
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	// unknown supplier surfaces as a foreign key violation
	_, err = f.svc.RequestQuotes(ctx, owner, projectID, rfq, []string{supplierA})
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestSubmitQuote(t *testing.T) {
	f := newFixture()
	f.quotes.On("Get", mock.Anything, quoteID).Return(&model.Quote{ID: quoteID, ProjectID: projectID}, nil)
	f.quotes.On("Submit", mock.Anything, quoteID, mock.MatchedBy(func(raw json.RawMessage) bool {
		var o model.QuoteOffer
		return json.Unmarshal(raw, &o) == nil && o.Currency == DefaultCurrency && o.Price == 1200 && o.LeadTimeDays == 14
	})).Return(&model.Quote{ID: quoteID, Status: model.QuoteReceived}, nil).Once()
	ctx := context.Background()

	q, err := f.svc.SubmitQuote(ctx, owner, quoteID, model.QuoteOffer{Price: 1200, LeadTimeDays: 14})
	require.NoError(t, err)
	assert.Equal(t, model.QuoteReceived, q.Status)

	_, err = f.svc.SubmitQuote(ctx, owner, quoteID, model.QuoteOffer{Price: -1, LeadTimeDays: 14})
	assert.ErrorIs(t, err, ErrInvalidOffer)

	_, err = f.svc.SubmitQuote(ctx, owner, quoteID, model.QuoteOffer{Price: 5, LeadTimeDays: 0})
	assert.ErrorIs(t, err, ErrInvalidOffer)

	// another founder's quote reads as absent
	_, err = f.svc.SubmitQuote(ctx, stranger, quoteID, model.QuoteOffer{Price: 5, LeadTimeDays: 1})
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	f.quotes.AssertNumberOfCalls(t, "Submit", 1)
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	missing := "11111111-2222-4333-8444-555555555555"
	f.quotes.On("Get", mock.Anything, quoteID).Return(&model.Quote{ID: quoteID, ProjectID: projectID}, nil)
	f.quotes.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)
	f.quotes.On("UpdateStatus", mock.Anything, quoteID, model.QuoteShortlisted).Return(&model.Quote{ID: quoteID, Status: model.QuoteShortlisted}, nil)
	ctx := context.Background()

	q, err := f.svc.SetStatus(ctx, admin, quoteID, model.QuoteShortlisted)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteShortlisted, q.Status)

	_, err = f.svc.SetStatus(ctx, owner, quoteID, model.QuoteReceived)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetStatus(ctx, owner, missing, model.QuoteRejected)
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	_, err = f.svc.SetStatus(ctx, owner, "bad", model.QuoteRejected)
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestListQuotes_OwnerOnly(t *testing.T) {
	f := newFixture()
	f.quotes.On("ListByProject", mock.Anything, projectID).Return([]model.Quote{{ID: quoteID}}, nil)

	got, err := f.svc.ListQuotes(context.Background(), owner, projectID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.ListQuotes(context.Background(), stranger, projectID)
	assert.ErrorIs(t, err, ErrProjectNotOwned)
}

func TestSuppliers(t *testing.T) {
	f := newFixture()
	f.suppliers.On("Search", mock.Anything, model.SupplierFilter{Category: "metal", Query: "acme"}).Return([]model.Supplier{{ID: supplierA}}, nil)
	f.suppliers.On("Suggest", mock.Anything, "metal", SuggestLimit).Return([]model.Supplier{{ID: supplierB}}, nil)

	got, err := f.svc.SearchSuppliers(context.Background(), model.SupplierFilter{Category: " metal ", Query: "acme "})
	require.NoError(t, err)
	assert.Equal(t, supplierA, got[0].ID)

	got, err = f.svc.SuggestSuppliers(context.Background(), "metal")
	require.NoError(t, err)
	assert.Equal(t, supplierB, got[0].ID)
}
