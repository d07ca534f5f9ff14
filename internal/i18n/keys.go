// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired         = "auth.required"
	KeyAuthInvalidToken     = "auth.invalid_token"
	KeyAuthTokenExpired     = "auth.token_expired"
	KeyAuthTokenIssued      = "auth.token_issued"
	KeyAuthIssuanceDisabled = "auth.issuance_disabled"

	// Operator
	KeyOperatorAccessDenied    = "operator.access_denied"
	KeyOperatorRoleAssigned    = "operator.role_assigned"
	KeyOperatorCompanyVerified = "operator.company_verified"
	KeyOperatorRegistrySet     = "operator.registry_updated"
	KeyOperatorFaucetMinted    = "operator.faucet_minted"
	KeyOperatorFaucetDisabled  = "operator.faucet_disabled"

	// Scholarships
	KeyScholarshipCreated           = "scholarship.created"
	KeyScholarshipUpdated           = "scholarship.updated"
	KeyScholarshipNotFound          = "scholarship.not_found"
	KeyScholarshipApplied           = "scholarship.applied"
	KeyScholarshipStudentApproved   = "scholarship.student_approved"
	KeyScholarshipMilestoneComplete = "scholarship.milestone_completed"
	KeyApplicationNotFound          = "application.not_found"

	// Upkeep
	KeyUpkeepPerformed     = "upkeep.performed"
	KeyUpkeepConfigUpdated = "upkeep.config_updated"
	KeyUpkeepWithdrawn     = "upkeep.withdrawn"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)

// ErrorKey is the translation key for a stable error code.
func ErrorKey(code string) string {
	return "error." + code
}
