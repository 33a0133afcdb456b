package ports

import "context"

// Product is a sellable product on the payment platform.
type Product struct {
	ID    string
	Title string
}

// Plan is one raw checkout plan as reported by the payment platform. The
// InternalNotes annotation is the free text the link reconciliation engine
// classifies; everything else is passed through.
type Plan struct {
	ID            string
	InternalNotes string
	InitialPrice  float64
	MemberCount   int
	PurchaseURL   string
	CreatedAt     string
}

// PaymentLinks is the checkout/subscription-link provider. ListPlans pages
// through the upstream listing until its "has more" flag clears, throttling
// between pages, and returns the accumulated set.
type PaymentLinks interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListPlans(ctx context.Context, productID string) ([]Plan, error)
	DeletePlan(ctx context.Context, planID string) error
}
