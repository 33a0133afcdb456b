package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/api/metrics"
	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/cache"
)

const (
	linksTTL = 5 * time.Minute
	// closerLookupTimeout bounds the per-closer lookup; the payment platform
	// paginates slowly and the admin UI cannot wait on a full sweep.
	closerLookupTimeout = 25 * time.Second
)

// Links is the payment-link reconciliation engine. It sweeps the payment
// platform's plan listings, classifies each plan's free-text annotation into
// a (closer, link type) pair, and serves grouped views. The per-closer fast
// path reads only the configured priority products, cached briefly.
type Links struct {
	payments         ports.PaymentLinks
	classifier       *domain.LinkClassifier
	priorityProducts []string
	cached           *cache.Snapshot[[]domain.CloserLink]
	log              zerolog.Logger
}

func NewLinks(payments ports.PaymentLinks, employeeDomain string, priorityProducts []string, log zerolog.Logger) *Links {
	s := &Links{
		payments:         payments,
		classifier:       domain.NewLinkClassifier(employeeDomain),
		priorityProducts: priorityProducts,
		log:              log.With().Str("service", "links").Logger(),
	}
	s.cached = cache.New(linksTTL, s.fetchPriorityLinks)
	return s
}

func (s *Links) buildLink(plan ports.Plan, product ports.Product, class *domain.LinkClass) domain.CloserLink {
	return domain.CloserLink{
		PlanID:      plan.ID,
		CloserEmail: class.CloserEmail,
		LinkType:    class.Type,
		TypeLabel:   class.Type.Label(),
		Price:       plan.InitialPrice,
		MemberCount: plan.MemberCount,
		CheckoutURL: plan.PurchaseURL,
		ProductID:   product.ID,
		ProductName: product.Title,
		CreatedAt:   plan.CreatedAt,
		RawNote:     plan.InternalNotes,
	}
}

// collectProductLinks classifies every plan of one product; unclassifiable
// plans are dropped.
func (s *Links) collectProductLinks(ctx context.Context, product ports.Product) ([]domain.CloserLink, error) {
	plans, err := s.payments.ListPlans(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	var links []domain.CloserLink
	for _, plan := range plans {
		if class := s.classifier.Classify(plan.InternalNotes); class != nil {
			links = append(links, s.buildLink(plan, product, class))
		}
	}
	return links, nil
}

// fetchPriorityLinks backs the cached fast path: only the priority products
// are swept, because every closer's active links live on them.
func (s *Links) fetchPriorityLinks(ctx context.Context) ([]domain.CloserLink, error) {
	products, err := s.payments.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ports.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var links []domain.CloserLink
	for _, id := range s.priorityProducts {
		if id == "" {
			continue
		}
		product, ok := byID[id]
		if !ok {
			product = ports.Product{ID: id}
		}
		productLinks, err := s.collectProductLinks(ctx, product)
		if err != nil {
			return nil, err
		}
		links = append(links, productLinks...)
	}
	return links, nil
}

// GroupedByCloser sweeps every product and groups the classified links per
// closer, ordered by email.
func (s *Links) GroupedByCloser(ctx context.Context) ([]domain.CloserLinkGroup, error) {
	products, err := s.payments.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	var all []domain.CloserLink
	for _, product := range products {
		links, err := s.collectProductLinks(ctx, product)
		if err != nil {
			return nil, err
		}
		all = append(all, links...)
	}
	return groupByCloser(all), nil
}

// GroupedByProduct builds the two-level product view. Priority products come
// first in their configured order; the rest follow in listing order.
func (s *Links) GroupedByProduct(ctx context.Context) ([]domain.ProductLinkGroup, error) {
	products, err := s.payments.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products = s.prioritize(products)

	groups := make([]domain.ProductLinkGroup, 0, len(products))
	for _, product := range products {
		links, err := s.collectProductLinks(ctx, product)
		if err != nil {
			return nil, err
		}
		if len(links) == 0 {
			continue
		}
		closers := groupByCloser(links)

		seen := map[domain.LinkType]bool{}
		var types []domain.LinkType
		for _, l := range links {
			if !seen[l.LinkType] {
				seen[l.LinkType] = true
				types = append(types, l.LinkType)
			}
		}
		groups = append(groups, domain.ProductLinkGroup{
			ProductID:    product.ID,
			ProductName:  product.Title,
			Closers:      closers,
			TotalClosers: len(closers),
			TotalLinks:   len(links),
			LinkTypes:    types,
		})
	}
	return groups, nil
}

// LinksForCloser returns one closer's links from the cached priority-product
// sweep, bounded by the lookup timeout.
func (s *Links) LinksForCloser(ctx context.Context, email string) ([]domain.CloserLink, error) {
	ctx, cancel := context.WithTimeout(ctx, closerLookupTimeout)
	defer cancel()

	all, err := s.cached.Get(ctx)
	if err != nil {
		return nil, err
	}

	var links []domain.CloserLink
	for _, l := range all {
		if l.CloserEmail == email {
			links = append(links, l)
		}
	}
	return links, nil
}

// DeleteForCloser deletes every link attributed to the closer, best effort:
// one failed deletion is recorded and the rest proceed. The link set is
// resolved with a fresh sweep, never the cached one, so links created since
// the last read are deleted too; the cache is invalidated afterwards so the
// next read reflects the deletions.
func (s *Links) DeleteForCloser(ctx context.Context, email string) (*ports.DeleteLinksResult, error) {
	ctx, cancel := context.WithTimeout(ctx, closerLookupTimeout)
	defer cancel()

	all, err := s.fetchPriorityLinks(ctx)
	if err != nil {
		return nil, err
	}
	var links []domain.CloserLink
	for _, l := range all {
		if l.CloserEmail == email {
			links = append(links, l)
		}
	}

	result := &ports.DeleteLinksResult{TotalLinks: len(links)}
	for _, link := range links {
		if err := s.payments.DeletePlan(ctx, link.PlanID); err != nil {
			metrics.LinkDeletionsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, ports.DeleteLinkError{PlanID: link.PlanID, Error: err.Error()})
			continue
		}
		metrics.LinkDeletionsTotal.WithLabelValues("deleted").Inc()
		result.DeletedCount++
	}

	if result.DeletedCount > 0 {
		s.cached.Invalidate()
	}
	s.log.Info().Str("closer", email).Int("deleted", result.DeletedCount).Int("failed", len(result.Errors)).Msg("closer links deleted")
	return result, nil
}

// prioritize moves the configured priority products to the front, keeping
// their configured order.
func (s *Links) prioritize(products []ports.Product) []ports.Product {
	rank := make(map[string]int, len(s.priorityProducts))
	for i, id := range s.priorityProducts {
		rank[id] = i + 1
	}
	sort.SliceStable(products, func(i, j int) bool {
		ri, rj := rank[products[i].ID], rank[products[j].ID]
		if ri == 0 {
			ri = len(rank) + 2
		}
		if rj == 0 {
			rj = len(rank) + 2
		}
		return ri < rj
	})
	return products
}

func groupByCloser(links []domain.CloserLink) []domain.CloserLinkGroup {
	byEmail := map[string]*domain.CloserLinkGroup{}
	for _, link := range links {
		group, ok := byEmail[link.CloserEmail]
		if !ok {
			group = &domain.CloserLinkGroup{
				Email:      link.CloserEmail,
				CloserName: domain.CloserNameFromEmail(link.CloserEmail),
			}
			byEmail[link.CloserEmail] = group
		}
		group.Links = append(group.Links, link)
		group.TotalMembers += link.MemberCount
	}

	groups := make([]domain.CloserLinkGroup, 0, len(byEmail))
	for _, g := range byEmail {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Email < groups[j].Email })
	return groups
}
