// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route patterns.
const (
	RouteHealth = "/health"

	RouteAPI           = "/api"
	RouteSite          = "/site"
	RouteInquiries     = "/inquiries"
	RouteRegistrations = "/registrations"
	RouteChat          = "/chat"
	RouteDemo          = "/demo"

	RouteAdmin               = "/admin"
	RouteAdminLogin          = "/login"
	RouteAdminLogout         = "/logout"
	RouteAdminStatus         = "/status"
	RouteAdminSite           = "/site"
	RouteAdminTheme          = "/theme"
	RouteAdminInquiries      = "/inquiries"
	RouteAdminInquiryID      = "/inquiries/{id}"
	RouteAdminRegistrations  = "/registrations"
	RouteAdminRegistrationID = "/registrations/{id}"
	RouteAdminSnapshots      = "/snapshots"
	RouteAdminSnapshotID     = "/snapshots/{id}"
	RouteAdminRestore        = "/snapshots/{id}/restore"
	RouteAdminExport         = "/export"
	RouteAdminImport         = "/import"
	RouteAdminReset          = "/reset"
	RouteAdminImage          = "/images/{slot}"
	RouteAdminProjectImage   = "/projects/{id}/image"
	RouteAdminEvents         = "/events"
	RouteAdminJobs           = "/jobs"
	RouteAdminJobRun         = "/jobs/{name}/run"
)

// Image slots of the site document.
const (
	SlotProfile = "profile"
	SlotBanner  = "banner"
)

// Request body limits.
const (
	maxFormBody     = 64 << 10
	maxDocumentBody = 32 << 20
	maxImportBody   = 64 << 20
)

// Field limits for visitor submissions, in runes.
const (
	maxNameLength    = 120
	maxEmailLength   = 254
	maxPhoneLength   = 40
	maxMessageLength = 5000
)

// Error codes of the JSON API.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidLogin      = "invalid_credentials"
	CodeLockedOut         = "locked_out"
	CodeMalformedJSON     = "malformed_json"
	CodeUnsupportedBackup = "unsupported_version"
	CodeSaveFailed        = "save_failed"
	CodeQuotaExceeded     = "quota_exceeded"
	CodeGeneratorOff      = "generator_disabled"
	CodeGeneratorFailed   = "generator_failed"
	CodeUnsupportedImage  = "unsupported_image"
	CodeTooLarge          = "too_large"
	CodeInternal          = "internal_error"
)
