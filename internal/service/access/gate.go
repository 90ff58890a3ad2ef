package access

import "dealroom/internal/model"

// IsOpenByDefault reports whether every investor may see the project's dealroom.
// A project without a score is compared as 0.
func IsOpenByDefault(p *model.Project, threshold float64) bool {
	if p.Visibility == model.VisibilityInvestorPreview {
		return true
	}
	score := 0.0
	if p.SuccessScore != nil {
		score = *p.SuccessScore
	}
	return score >= threshold
}

// CanView applies the gate to an already loaded set of access requests.
func CanView(investorID string, p *model.Project, threshold float64, requests []model.AccessRequest) bool {
	if IsOpenByDefault(p, threshold) {
		return true
	}
	for _, r := range requests {
		if r.ProjectID == p.ID && r.InvestorID == investorID && r.Status == model.AccessApproved {
			return true
		}
	}
	return false
}

// ValidTargetStatus lists the states an admin review may set.
func ValidTargetStatus(status string) bool {
	switch status {
	case model.AccessApproved, model.AccessRejected, model.AccessRevoked:
		return true
	}
	return false
}
