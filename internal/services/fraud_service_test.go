package services_test

import (
	"reflect"
	"testing"

	"stellar/internal/domain"
	"stellar/internal/services"
)

func TestCheckFraudRisk(t *testing.T) {
	svc := services.NewFraudService()

	cases := []struct {
		name        string
		in          services.FraudInput
		wantScore   int
		wantLevel   domain.RiskLevel
		wantReview  bool
		wantFactors int
	}{
		{
			name: "all factors trigger",
			in: services.FraudInput{
				TotalAmount: 600, PriorOrderCount: 0,
				BillingAddressSameAsShipping: false, ShippingMethod: "overnight",
			},
			wantScore: 65, wantLevel: domain.RiskHigh, wantReview: true, wantFactors: 3,
		},
		{
			name: "high value first order only",
			in: services.FraudInput{
				TotalAmount: 1000, PriorOrderCount: 0,
				BillingAddressSameAsShipping: true, ShippingMethod: "standard",
			},
			wantScore: 30, wantLevel: domain.RiskMedium, wantReview: false, wantFactors: 1,
		},
		{
			name: "repeat customer, clean order",
			in: services.FraudInput{
				TotalAmount: 1000, PriorOrderCount: 4,
				BillingAddressSameAsShipping: true, ShippingMethod: "standard",
			},
			wantScore: 0, wantLevel: domain.RiskLow, wantReview: false, wantFactors: 0,
		},
		{
			name: "address mismatch alone stays low",
			in: services.FraudInput{
				TotalAmount: 100, PriorOrderCount: 2,
				BillingAddressSameAsShipping: false, ShippingMethod: "standard",
			},
			wantScore: 20, wantLevel: domain.RiskLow, wantReview: false, wantFactors: 1,
		},
		{
			name: "express first order plus mismatch",
			in: services.FraudInput{
				TotalAmount: 50, PriorOrderCount: 0,
				BillingAddressSameAsShipping: false, ShippingMethod: "express",
			},
			wantScore: 35, wantLevel: domain.RiskMedium, wantReview: false, wantFactors: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.CheckFraudRisk(tc.in)
			if got.RiskScore != tc.wantScore {
				t.Fatalf("score: want %d, got %d", tc.wantScore, got.RiskScore)
			}
			if got.RiskLevel != tc.wantLevel {
				t.Fatalf("level: want %s, got %s", tc.wantLevel, got.RiskLevel)
			}
			if got.RequiresReview != tc.wantReview {
				t.Fatalf("requiresReview: want %v, got %v", tc.wantReview, got.RequiresReview)
			}
			if len(got.RiskFactors) != tc.wantFactors {
				t.Fatalf("factors: want %d, got %v", tc.wantFactors, got.RiskFactors)
			}
		})
	}
}

// Identical input must always yield an identical assessment.
func TestCheckFraudRisk_Deterministic(t *testing.T) {
	svc := services.NewFraudService()
	in := services.FraudInput{
		TotalAmount: 600, PriorOrderCount: 0,
		BillingAddressSameAsShipping: false, ShippingMethod: "overnight",
	}
	first := svc.CheckFraudRisk(in)
	for i := 0; i < 10; i++ {
		if got := svc.CheckFraudRisk(in); !reflect.DeepEqual(first, got) {
			t.Fatalf("assessment drifted: %+v vs %+v", first, got)
		}
	}
}
