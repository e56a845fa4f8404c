package api

import (
	"net/http"
	"testing"
)

func memberWithRole(role Role) *Member {
	return &Member{Role: role}
}

func TestClassifyMethod(t *testing.T) {
	safe := []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	for _, m := range safe {
		if classifyMethod(m) != methodSafe {
			t.Errorf("classifyMethod(%s) should be safe", m)
		}
	}
	mutating := []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	for _, m := range mutating {
		if classifyMethod(m) != methodMutating {
			t.Errorf("classifyMethod(%s) should be mutating", m)
		}
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		rule       accessRule
		class      methodClass
		membership *Member
		ownsTarget bool
		wantAllow  bool
	}{
		// tickets: member-visible, approved members mutate
		{"ticket read by non-member", ruleTicket, methodSafe, nil, false, false},
		{"ticket read by unapproved member", ruleTicket, methodSafe, memberWithRole(RoleUnapproved), false, true},
		{"ticket write by unapproved member", ruleTicket, methodMutating, memberWithRole(RoleUnapproved), false, false},
		{"ticket write by approved member", ruleTicket, methodMutating, memberWithRole(RoleApproved), false, true},
		{"ticket write by admin", ruleTicket, methodMutating, memberWithRole(RoleAdmin), false, true},
		{"ticket write by non-member", ruleTicket, methodMutating, nil, false, false},

		// teams: world-readable once resolved, admin mutates
		{"team read by non-member", ruleTeam, methodSafe, nil, false, true},
		{"team write by approved member", ruleTeam, methodMutating, memberWithRole(RoleApproved), false, false},
		{"team write by admin", ruleTeam, methodMutating, memberWithRole(RoleAdmin), false, true},

		// statuses: member-visible, admin mutates
		{"status write by approved member", ruleStatus, methodMutating, memberWithRole(RoleApproved), false, false},
		{"status write by admin", ruleStatus, methodMutating, memberWithRole(RoleAdmin), false, true},

		// members: owner edits self, admin edits anyone
		{"member self-update while unapproved", ruleMember, methodMutating, memberWithRole(RoleUnapproved), true, true},
		{"member update of other by approved", ruleMember, methodMutating, memberWithRole(RoleApproved), false, false},
		{"member update of other by admin", ruleMember, methodMutating, memberWithRole(RoleAdmin), false, true},

		// invites: admin both ways
		{"invite read by approved member", ruleInvite, methodSafe, memberWithRole(RoleApproved), false, false},
		{"invite read by admin", ruleInvite, methodSafe, memberWithRole(RoleAdmin), false, true},
		{"invite read by non-member", ruleInvite, methodSafe, nil, false, false},
		{"invite write by admin", ruleInvite, methodMutating, memberWithRole(RoleAdmin), false, true},

		// pins: strictly personal, admins get no override
		{"pin write by owner", rulePin, methodMutating, memberWithRole(RoleUnapproved), true, true},
		{"pin write by admin on another member", rulePin, methodMutating, memberWithRole(RoleAdmin), false, false},

		// comments: author or admin
		{"comment delete by author", ruleComment, methodMutating, memberWithRole(RoleApproved), true, true},
		{"comment delete by admin", ruleComment, methodMutating, memberWithRole(RoleAdmin), false, true},
		{"comment delete by other member", ruleComment, methodMutating, memberWithRole(RoleApproved), false, false},

		// export: admin read
		{"export by approved member", ruleExport, methodSafe, memberWithRole(RoleApproved), false, false},
		{"export by admin", ruleExport, methodSafe, memberWithRole(RoleAdmin), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evaluate(tt.rule, tt.class, tt.membership, tt.ownsTarget)
			if allowed := err == nil; allowed != tt.wantAllow {
				t.Fatalf("evaluate() allowed = %v, want %v (err = %v)", allowed, tt.wantAllow, err)
			}
			if err != nil && err != ErrForbidden {
				t.Fatalf("denial must be ErrForbidden, got %v", err)
			}
		})
	}
}

func TestRoles(t *testing.T) {
	tests := []struct {
		role     Role
		valid    bool
		admin    bool
		approved bool
	}{
		{RoleUnapproved, true, false, false},
		{RoleApproved, true, false, true},
		{RoleAdmin, true, true, true},
		{Role("XX"), false, false, false},
		{Role(""), false, false, false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.valid {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.valid)
		}
		if got := tt.role.IsAdmin(); got != tt.admin {
			t.Errorf("Role(%q).IsAdmin() = %v, want %v", tt.role, got, tt.admin)
		}
		if got := tt.role.IsApproved(); got != tt.approved {
			t.Errorf("Role(%q).IsApproved() = %v, want %v", tt.role, got, tt.approved)
		}
	}
}
