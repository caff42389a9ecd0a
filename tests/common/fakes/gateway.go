//go:build unit || e2e

// Package fakes holds in-process stand-ins for external services.
package fakes

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"smartpark/internal/usecase/commands"
)

var ErrGatewayDown = errors.New("payment gateway unavailable")

// Gateway records checkout sessions in memory. Sessions start unpaid; tests
// call Pay to simulate the customer completing checkout.
type Gateway struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*commands.SessionOutcome
	requests []commands.CheckoutRequest
	byKey    map[string]string

	// FailCreate makes the next CreateCheckoutSession calls fail.
	FailCreate bool
}

func NewGateway() *Gateway {
	g := &Gateway{}
	g.Reset()
	return g
}

func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
	g.sessions = map[string]*commands.SessionOutcome{}
	g.byKey = map[string]string{}
	g.requests = nil
	g.FailCreate = false
}

func (g *Gateway) CreateCheckoutSession(_ context.Context, req commands.CheckoutRequest) (*commands.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCreate {
		return nil, ErrGatewayDown
	}
	g.requests = append(g.requests, req)

	if id, ok := g.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &commands.CheckoutSession{ID: id, URL: checkoutURL(id)}, nil
	}

	g.seq++
	id := fmt.Sprintf("cs_test_%d", g.seq)
	g.sessions[id] = &commands.SessionOutcome{
		ID:             id,
		AmountCaptured: req.Amount,
		Metadata:       maps.Clone(req.Metadata),
	}
	if req.IdempotencyKey != "" {
		g.byKey[req.IdempotencyKey] = id
	}
	return &commands.CheckoutSession{ID: id, URL: checkoutURL(id)}, nil
}

func (g *Gateway) RetrieveSession(_ context.Context, sessionID string) (*commands.SessionOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	out := *s
	out.Metadata = maps.Clone(s.Metadata)
	return &out, nil
}

// Pay marks the session as paid.
func (g *Gateway) Pay(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.sessions[sessionID]; ok {
		s.Paid = true
	}
}

// Requests returns every checkout request received so far.
func (g *Gateway) Requests() []commands.CheckoutRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]commands.CheckoutRequest(nil), g.requests...)
}

// LastSessionID is the id of the most recently opened session.
func (g *Gateway) LastSessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq == 0 {
		return ""
	}
	return fmt.Sprintf("cs_test_%d", g.seq)
}

func checkoutURL(id string) string {
	return "https://checkout.test/pay/" + id
}
