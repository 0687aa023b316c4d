// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the remote assessment service.
//
// The service owns all of the hard work: report parsing, risk scoring,
// and response generation. This client only moves bytes: it uploads a
// report file as multipart form data, posts chat turns as JSON, and
// pings the health endpoint to warm up a cold-started deployment.
//
// Errors split into two families. An *APIError carries a message the
// service itself produced and is shown to the user verbatim. Sentinel
// errors (ErrTimeout, ErrUnreachable) mark transport failures that the
// UI maps to generic connectivity notices.
package backend
