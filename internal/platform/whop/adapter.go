// Package whop adapts the Whop payments API. Plan listings use cursor
// pagination (pages of 100, resumed with an after cursor while the upstream
// reports more) with a throttle between pages so large accounts do not trip
// upstream rate limits.
package whop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = "whop"
	baseURL      = "https://api.whop.com"
	graphqlPath  = "/public-graphql"

	planPageSize = 100
	// pageInterval spaces successive page fetches of one listing.
	pageInterval = 500 * time.Millisecond
)

// Adapter implements ports.PaymentLinks.
type Adapter struct {
	client    *rest.Client
	companyID string
	throttle  *rate.Limiter
	log       zerolog.Logger
}

func New(cfg config.WhopConfig, log zerolog.Logger) *Adapter {
	return &Adapter{
		client:    rest.New(platformName, baseURL, rest.BearerAuth(cfg.APIKey), log),
		companyID: cfg.CompanyID,
		throttle:  rate.NewLimiter(rate.Every(pageInterval), 1),
		log:       log.With().Str("platform", platformName).Logger(),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query runs one GraphQL operation and decodes its data payload into out.
func (a *Adapter) query(ctx context.Context, q string, vars map[string]any, out any) error {
	var resp gqlResponse
	if err := a.client.PostJSON(ctx, graphqlPath, gqlRequest{Query: q, Variables: vars}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return &domain.UpstreamError{Platform: platformName, Message: resp.Errors[0].Message}
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("whop: decode response: %w", err)
		}
	}
	return nil
}

const productsQuery = `
query Products($companyId: ID!) {
  company(id: $companyId) {
    accessPasses(first: 100) {
      nodes { id title }
    }
  }
}`

func (a *Adapter) ListProducts(ctx context.Context) ([]ports.Product, error) {
	var data struct {
		Company struct {
			AccessPasses struct {
				Nodes []struct {
					ID    string `json:"id"`
					Title string `json:"title"`
				} `json:"nodes"`
			} `json:"accessPasses"`
		} `json:"company"`
	}
	if err := a.query(ctx, productsQuery, map[string]any{"companyId": a.companyID}, &data); err != nil {
		return nil, err
	}

	products := make([]ports.Product, 0, len(data.Company.AccessPasses.Nodes))
	for _, n := range data.Company.AccessPasses.Nodes {
		products = append(products, ports.Product{ID: n.ID, Title: n.Title})
	}
	return products, nil
}

const plansQuery = `
query Plans($companyId: ID!, $productId: ID, $first: Int!, $after: String) {
  company(id: $companyId) {
    plans(accessPassId: $productId, first: $first, after: $after) {
      nodes {
        id
        internalNotes
        initialPrice
        activeMemberCount
        purchaseUrl
        createdAt
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

// ListPlans accumulates every page of the product's plan listing. The page
// throttle applies between fetches so a full sweep stays within rate limits.
func (a *Adapter) ListPlans(ctx context.Context, productID string) ([]ports.Plan, error) {
	var plans []ports.Plan
	cursor := ""
	page := 0

	for {
		if err := a.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		vars := map[string]any{
			"companyId": a.companyID,
			"first":     planPageSize,
		}
		if productID != "" {
			vars["productId"] = productID
		}
		if cursor != "" {
			vars["after"] = cursor
		}

		var data struct {
			Company struct {
				Plans struct {
					Nodes []struct {
						ID                string  `json:"id"`
						InternalNotes     string  `json:"internalNotes"`
						InitialPrice      float64 `json:"initialPrice"`
						ActiveMemberCount int     `json:"activeMemberCount"`
						PurchaseURL       string  `json:"purchaseUrl"`
						CreatedAt         string  `json:"createdAt"`
					} `json:"nodes"`
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
				} `json:"plans"`
			} `json:"company"`
		}
		if err := a.query(ctx, plansQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, n := range data.Company.Plans.Nodes {
			plans = append(plans, ports.Plan{
				ID:            n.ID,
				InternalNotes: n.InternalNotes,
				InitialPrice:  n.InitialPrice,
				MemberCount:   n.ActiveMemberCount,
				PurchaseURL:   n.PurchaseURL,
				CreatedAt:     n.CreatedAt,
			})
		}
		page++

		if !data.Company.Plans.PageInfo.HasNextPage {
			break
		}
		cursor = data.Company.Plans.PageInfo.EndCursor
	}

	a.log.Debug().Str("product_id", productID).Int("pages", page).Int("plans", len(plans)).Msg("plan listing complete")
	return plans, nil
}

const deletePlanMutation = `
mutation DeletePlan($id: ID!) {
  deletePlan(input: { id: $id }) { id }
}`

func (a *Adapter) DeletePlan(ctx context.Context, planID string) error {
	if err := a.query(ctx, deletePlanMutation, map[string]any{"id": planID}, nil); err != nil {
		return err
	}
	a.log.Info().Str("plan_id", planID).Msg("payment plan deleted")
	return nil
}
