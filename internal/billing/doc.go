// Package billing turns Stripe webhook deliveries into account subscription
// state. It verifies each delivery's signature, classifies the event into a
// lifecycle action, resolves which account the event belongs to, computes a
// partial state transition, and persists it through the profile store.
//
// The package is organized around small pieces with single responsibilities:
//
//   - Catalog maps Stripe price IDs to plan tiers and billing periods.
//   - Classify maps event types to lifecycle actions.
//   - Resolver locates the subscriber behind an event payload.
//   - The reconcile functions compute partial updates from (record, payload, now).
//   - Service orchestrates the pipeline; Handler exposes it over HTTP.
//
// Provider I/O (signature verification, line-item and customer lookups, the
// billing portal) sits behind interfaces so the pipeline is testable without
// the Stripe SDK. StripeGateway is the production implementation.
package billing
