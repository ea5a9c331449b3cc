package services

import "github.com/google/uuid"

type PaymentDetails struct {
	OrderID string
	Amount  float64
	Method  string
}

type PaymentResult struct {
	TransactionID string
	Approved      bool
}

// PaymentGateway is an external collaborator; the real integration point is
// outside this module.
type PaymentGateway interface {
	Process(d PaymentDetails) (PaymentResult, error)
}

// StubGateway approves everything unless a Decide policy is injected. The
// upstream system simulated outcomes with a RNG; that was a stand-in, not a
// contract, so the stub keeps the decision explicit and testable.
type StubGateway struct {
	Decide func(PaymentDetails) bool
}

func (g *StubGateway) Process(d PaymentDetails) (PaymentResult, error) {
	approved := true
	if g.Decide != nil {
		approved = g.Decide(d)
	}
	return PaymentResult{TransactionID: uuid.NewString(), Approved: approved}, nil
}
