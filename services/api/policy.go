package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type methodClass int

const (
	methodSafe methodClass = iota
	methodMutating
)

func classifyMethod(method string) methodClass {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return methodSafe
	}
	return methodMutating
}

// mutationGate names who may mutate a resource. Reads are governed
// separately by accessRule.memberRead.
type mutationGate int

const (
	// gateApproved permits approved members and admins.
	gateApproved mutationGate = iota
	// gateAdmin permits admins only.
	gateAdmin
	// gateOwner permits only the actor that owns the target record.
	gateOwner
	// gateOwnerOrAdmin permits the owner of the target record or an admin.
	gateOwnerOrAdmin
)

// accessRule is the explicit per-resource policy. memberRead=true denies
// everything, reads included, to users with no membership row for the team,
// so non-members cannot enumerate another team's data.
type accessRule struct {
	memberRead bool
	adminRead  bool
	gate       mutationGate
}

var (
	ruleTeam       = accessRule{memberRead: false, gate: gateAdmin}
	ruleTicket     = accessRule{memberRead: true, gate: gateApproved}
	ruleTag        = accessRule{memberRead: true, gate: gateApproved}
	ruleStatus     = accessRule{memberRead: true, gate: gateAdmin}
	ruleMember     = accessRule{memberRead: true, gate: gateOwnerOrAdmin}
	ruleInvite     = accessRule{memberRead: true, adminRead: true, gate: gateAdmin}
	rulePin        = accessRule{memberRead: true, gate: gateOwner}
	ruleComment    = accessRule{memberRead: true, gate: gateOwnerOrAdmin}
	ruleEvent      = accessRule{memberRead: true, gate: gateAdmin}
	ruleAttachment = accessRule{memberRead: true, gate: gateApproved}
	ruleExport     = accessRule{memberRead: true, adminRead: true, gate: gateAdmin}
)

// evaluate decides allow/deny for one request. membership is nil when the
// actor has no live membership row for the target's team; ownsTarget reports
// whether the actor owns the specific record being mutated.
func evaluate(rule accessRule, class methodClass, membership *Member, ownsTarget bool) error {
	if class == methodSafe {
		if rule.memberRead && membership == nil {
			return ErrForbidden
		}
		if rule.adminRead && (membership == nil || !membership.Role.IsAdmin()) {
			return ErrForbidden
		}
		return nil
	}

	if membership == nil {
		return ErrForbidden
	}

	switch rule.gate {
	case gateApproved:
		if membership.Role.IsApproved() {
			return nil
		}
	case gateAdmin:
		if membership.Role.IsAdmin() {
			return nil
		}
	case gateOwner:
		if ownsTarget {
			return nil
		}
	case gateOwnerOrAdmin:
		if ownsTarget || membership.Role.IsAdmin() {
			return nil
		}
	}
	return ErrForbidden
}

// authorize resolves the actor's membership for the team and applies the
// rule. Deactivated memberships count as absent.
func (a *API) authorize(ctx context.Context, actor string, method string, teamID uuid.UUID, rule accessRule, ownsTarget bool) error {
	membership, err := a.getMembership(ctx, teamID, actor)
	switch {
	case err == nil:
		// fall through with the live membership
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership = nil
	default:
		return err
	}

	if err := evaluate(rule, classifyMethod(method), membership, ownsTarget); err != nil {
		policyDenials.Inc()
		return err
	}
	return nil
}
