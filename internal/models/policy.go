package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/upb/fbenum/enum"
)

// PolicyType represents different types of policies. Policies written by
// newer deployments may carry types this build does not know; they decode
// as UNSUPPORTED and keep their stored value.
type PolicyType string

var (
	PolicyTypes = enum.New[PolicyType]("PolicyType", enum.WithUnknownName("UNSUPPORTED"))

	PolicyTypeRateLimit = PolicyTypes.Declare("RATE_LIMIT", "rate_limit")
	PolicyTypeBudget    = PolicyTypes.Declare("BUDGET", "budget")
	PolicyTypeRouting   = PolicyTypes.Declare("ROUTING", "routing")
	PolicyTypePII       = PolicyTypes.Declare("PII_DETECTION", "pii_detection")
	PolicyTypeInjection = PolicyTypes.Declare("INJECTION_GUARD", "injection_guard")
	PolicyTypeRetry     = PolicyTypes.Declare("RETRY", "retry")
)

// PolicyColumns lists the columns read by ScanPolicy, in order
var PolicyColumns = []string{
	"id", "org_id", "app_id", "policy_type", "config", "priority", "enabled", "created_at", "updated_at",
}

// Policy represents a policy configuration
type Policy struct {
	ID         uuid.UUID               `json:"id" db:"id"`
	OrgID      uuid.UUID               `json:"org_id" db:"org_id" validate:"required"`
	AppID      *uuid.UUID              `json:"app_id,omitempty" db:"app_id"` // Null if org-wide
	PolicyType enum.Member[PolicyType] `json:"policy_type" db:"policy_type" validate:"required"`
	Config     json.RawMessage         `json:"config" db:"config"` // JSONB configuration
	Priority   int                     `json:"priority" db:"priority" validate:"gte=0"`
	Enabled    bool                    `json:"enabled" db:"enabled"`
	CreatedAt  time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Policy model
func (Policy) TableName() string {
	return "policies"
}

// NewPolicy creates a new Policy instance
func NewPolicy(orgID uuid.UUID, policyType enum.Member[PolicyType], config json.RawMessage, priority int) *Policy {
	now := time.Now()
	return &Policy{
		ID:         uuid.New(),
		OrgID:      orgID,
		PolicyType: policyType,
		Config:     config,
		Priority:   priority,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsSupported reports whether this build knows how to enforce the policy
func (p *Policy) IsSupported() bool {
	return p.PolicyType.IsKnown()
}

// RowScanner is implemented by *sql.Row and *sql.Rows
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanPolicy reads a policy row selected with PolicyColumns
func ScanPolicy(row RowScanner) (*Policy, error) {
	var p Policy
	err := row.Scan(
		&p.ID,
		&p.OrgID,
		&p.AppID,
		&p.PolicyType,
		&p.Config,
		&p.Priority,
		&p.Enabled,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertArgs returns the column values for an insert, in PolicyColumns order
func (p *Policy) InsertArgs() []any {
	return []any{
		p.ID,
		p.OrgID,
		p.AppID,
		string(p.PolicyType.Value()),
		[]byte(p.Config),
		p.Priority,
		p.Enabled,
		p.CreatedAt,
		p.UpdatedAt,
	}
}

// RateLimitConfig represents rate limiting policy configuration
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute" validate:"gte=0"`
	RequestsPerHour   int `json:"requests_per_hour" validate:"gte=0"`
	TokensPerMinute   int `json:"tokens_per_minute" validate:"gte=0"`
}

// RetryConfig represents retry policy configuration. Unknown backoff
// strategies decode as UNSUPPORTED members holding the configured name.
type RetryConfig struct {
	MaxAttempts int                    `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts" validate:"gte=0,lte=10"`
	Backoff     enum.Adapted[Backoff]  `json:"backoff" yaml:"backoff" toml:"backoff" fbenum:"unknown=UNSUPPORTED"`
	RetryOn     []enum.Adapted[Status] `json:"retry_on" yaml:"retry_on" toml:"retry_on"`
}

// Backoff is a retry delay strategy
type Backoff string

var (
	Backoffs           = enum.New[Backoff]("Backoff")
	BackoffConstant    = Backoffs.Declare("CONSTANT", "constant")
	BackoffExponential = Backoffs.Declare("EXPONENTIAL", "exponential")
)

// Status is an upstream response status code
type Status int

var (
	Statuses                 = enum.New[Status]("Status")
	StatusTooManyRequests    = Statuses.Declare("TOO_MANY_REQUESTS", 429)
	StatusBadGateway         = Statuses.Declare("BAD_GATEWAY", 502)
	StatusServiceUnavailable = Statuses.Declare("SERVICE_UNAVAILABLE", 503)
)
