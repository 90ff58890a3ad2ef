package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/service/onboarding"
)

type OnboardingHandler struct {
	onboarding *onboarding.Service
	logger     *zap.Logger
}

func NewOnboardingHandler(s *onboarding.Service, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboarding: s, logger: logger}
}

type completeOnboardingRequest struct {
	// Role is accepted for client convenience; the stored role decides completeness.
	Role    string `json:"role" binding:"omitempty,oneof=founder expert investor"`
	Founder *struct {
		Name        string  `json:"name" binding:"required,min=1"`
		CompanyName *string `json:"companyName"`
		Location    *string `json:"location"`
		Website     *string `json:"website"`
	} `json:"founder"`
	Expert *struct {
		Categories     []string `json:"categories" binding:"required,min=1"`
		Skills         []string `json:"skills"`
		Location       *string  `json:"location"`
		PortfolioLinks []string `json:"portfolioLinks"`
		Availability   *string  `json:"availability"`
	} `json:"expert"`
	Investor *struct {
		FocusAreas      []string `json:"focusAreas" binding:"required,min=1"`
		StageFocus      []string `json:"stageFocus"`
		GeographicFocus []string `json:"geographicFocus"`
	} `json:"investor"`
}

// State handles GET /onboarding/state
func (h *OnboardingHandler) State(c *gin.Context) {
	st, err := h.onboarding.State(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Complete handles POST /onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	var req completeOnboardingRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeBindError(c, err)
		return
	}

	var in onboarding.CompleteInput
	if f := req.Founder; f != nil {
		in.Founder = &onboarding.FounderInput{Name: f.Name, CompanyName: f.CompanyName, Location: f.Location, Website: f.Website}
	}
	if e := req.Expert; e != nil {
		in.Expert = &onboarding.ExpertInput{
			Categories:     e.Categories,
			Skills:         e.Skills,
			Location:       e.Location,
			PortfolioLinks: e.PortfolioLinks,
			Availability:   e.Availability,
		}
	}
	if i := req.Investor; i != nil {
		in.Investor = &onboarding.InvestorInput{FocusAreas: i.FocusAreas, StageFocus: i.StageFocus, GeographicFocus: i.GeographicFocus}
	}

	st, err := h.onboarding.Complete(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
