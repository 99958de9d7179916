// Package rbac maps the two roles onto the permissions the API checks.
package rbac

import (
	"context"
	"strings"
)

var RolePermissions = map[string][]string{
	"student": {
		"delivery:create",
		"delivery:view-own",
		"resource:view",
		"reportcard:view-own",
		"message:send",
		"message:view",
	},
	"teacher": {
		"student:*",
		"attendance:*",
		"delivery:*",
		"grading:*",
		"payment:*",
		"equipment:*",
		"resource:*",
		"reportcard:*",
		"message:*",
	},
}

func Has(role, perm string) bool {
	for _, p := range RolePermissions[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
