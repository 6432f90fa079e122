// Package glocal provides the Glocal API server.

// This package contains only documentation. The application entry
// points live under cmd/, and the API is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/notifications: Notification fanout and cursor pagination
// - internal/polls: Anonymous voting token derivation and results
// - internal/websocket: WebSocket server for real-time updates
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cache: Redis caching for counts and poll results
// - internal/middleware: HTTP middleware (rate limiting, metrics, tracing)
// - internal/seed: Development database seeding

// See the individual package documentation for detailed API reference.
package glocal
