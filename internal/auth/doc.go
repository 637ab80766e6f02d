// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediagateway/gateway

// Package auth carries forward the teacher's JWT claims contract
// (Claims, JWTManager) as the gateway's external-boundary token format.
// The OIDC/Zitadel/Plex-OAuth flows, session store, CSRF middleware,
// lockout policy and PAT issuance that the teacher built around this
// contract have no caller in this module: no SPEC_FULL.md component
// terminates an HTTP/JSON session, so there is nothing for that surface
// to front. A future transport layer that needs to authenticate a
// caller can build on Claims/JWTManager directly.
package auth
