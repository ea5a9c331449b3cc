package services

import "stellar/internal/domain"

// FraudInput is the order data the scorer looks at. priorOrderCount comes
// from the order repo at creation time.
type FraudInput struct {
	TotalAmount                  float64
	PriorOrderCount              int
	BillingAddressSameAsShipping bool
	ShippingMethod               string
}

// Factor names surface verbatim in the assessment, in scoring order.
const (
	factorHighValueFirstOrder = "High value first order"
	factorAddressMismatch     = "Billing address differs from shipping address"
	factorRushFirstOrder      = "Rush shipping on first order"
)

// FraudService scores a proposed order. Scoring is additive and
// deterministic: the same input always yields the same assessment, and the
// assessment is informational only (it never blocks an order by itself).
type FraudService struct{}

func NewFraudService() *FraudService { return &FraudService{} }

func (s *FraudService) CheckFraudRisk(in FraudInput) domain.RiskAssessment {
	score := 0
	var factors []string

	if in.TotalAmount > 500 && in.PriorOrderCount == 0 {
		score += 30
		factors = append(factors, factorHighValueFirstOrder)
	}
	if !in.BillingAddressSameAsShipping {
		score += 20
		factors = append(factors, factorAddressMismatch)
	}
	if (in.ShippingMethod == "overnight" || in.ShippingMethod == "express") && in.PriorOrderCount == 0 {
		score += 15
		factors = append(factors, factorRushFirstOrder)
	}

	level := domain.RiskLow
	switch {
	case score >= 60:
		level = domain.RiskHigh
	case score >= 30:
		level = domain.RiskMedium
	}

	return domain.RiskAssessment{
		RiskScore:      score,
		RiskLevel:      level,
		RiskFactors:    factors,
		RequiresReview: level == domain.RiskHigh,
	}
}
