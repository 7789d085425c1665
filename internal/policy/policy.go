// Package policy decides, per entity and per action, whether an identity may
// perform it. Decisions are pure functions of (action, resource, identity):
// an explicit rule table replaces hidden ACL dispatch on the request path.
package policy

// Principal is a capability granted to a resolved identity.
type Principal string

const (
	// Everyone is held by all callers, anonymous included.
	Everyone Principal = "everyone"
	// Authenticated is held by callers with a resolved, active account.
	Authenticated Principal = "authenticated"
	// Admin is held by callers whose account has the admin flag.
	Admin Principal = "admin"
)

// Identity is a request's resolved caller. The zero value is anonymous.
type Identity struct {
	UserID  uint
	IsAdmin bool
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// Authenticated reports whether the identity maps to a real account.
func (id Identity) Authenticated() bool {
	return id.UserID != 0
}

// Principals returns the capability set granted to the identity.
func (id Identity) Principals() []Principal {
	ps := []Principal{Everyone}
	if id.Authenticated() {
		ps = append(ps, Authenticated)
	}
	if id.IsAdmin {
		ps = append(ps, Admin)
	}
	return ps
}

// Action enumerates the operations the rule table covers.
type Action string

const (
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionModerate Action = "moderate"
)

// Kind enumerates the entity kinds the rule table covers.
type Kind string

const (
	KindArticle  Kind = "article"
	KindThread   Kind = "thread"
	KindComment  Kind = "comment"
	KindCategory Kind = "category"
	KindUser     Kind = "user"
	KindStats    Kind = "stats"
)

// Resource describes the entity a check applies to. OwnerID is zero when the
// entity has no owner (categories, aggregates). Hidden marks resources whose
// existence must not leak to unauthorized viewers (draft articles).
type Resource struct {
	Kind    Kind
	OwnerID uint
	Hidden  bool
}

// Decision is the outcome of a capability check.
type Decision int

const (
	// Allow grants the action.
	Allow Decision = iota
	// DenyUnauthenticated rejects before any resource lookup (401).
	DenyUnauthenticated
	// DenyForbidden rejects without concealing existence (403).
	DenyForbidden
	// DenyNotFound rejects while concealing existence (404).
	DenyNotFound
)

type ruleKey struct {
	action Action
	kind   Kind
}

type rule func(id Identity, res Resource) Decision

func allowEveryone(Identity, Resource) Decision { return Allow }

func allowAuthenticated(id Identity, _ Resource) Decision {
	if !id.Authenticated() {
		return DenyUnauthenticated
	}
	return Allow
}

func allowOwnerOrAdmin(id Identity, res Resource) Decision {
	if !id.Authenticated() {
		return DenyUnauthenticated
	}
	if id.IsAdmin || id.UserID == res.OwnerID {
		return Allow
	}
	return DenyForbidden
}

func allowAdmin(id Identity, _ Resource) Decision {
	if !id.Authenticated() {
		return DenyUnauthenticated
	}
	if !id.IsAdmin {
		return DenyForbidden
	}
	return Allow
}

// readVisible allows everyone, except hidden resources, which only the owner
// or an admin may see. The denial is NotFound so draft existence never leaks.
func readVisible(id Identity, res Resource) Decision {
	if !res.Hidden {
		return Allow
	}
	if id.Authenticated() && (id.IsAdmin || id.UserID == res.OwnerID) {
		return Allow
	}
	return DenyNotFound
}

var rules = map[ruleKey]rule{
	{ActionRead, KindArticle}:  readVisible,
	{ActionRead, KindThread}:   allowEveryone,
	{ActionRead, KindComment}:  allowEveryone,
	{ActionRead, KindCategory}: allowEveryone,
	{ActionRead, KindUser}:     allowEveryone,

	{ActionCreate, KindArticle}: allowAuthenticated,
	{ActionCreate, KindThread}:  allowAuthenticated,
	{ActionCreate, KindComment}: allowAuthenticated,

	{ActionUpdate, KindArticle}: allowOwnerOrAdmin,
	{ActionUpdate, KindThread}:  allowOwnerOrAdmin,
	{ActionUpdate, KindComment}: allowOwnerOrAdmin,
	{ActionUpdate, KindUser}:    allowOwnerOrAdmin,

	{ActionDelete, KindArticle}: allowOwnerOrAdmin,
	{ActionDelete, KindThread}:  allowOwnerOrAdmin,
	{ActionDelete, KindComment}: allowOwnerOrAdmin,
	{ActionDelete, KindUser}:    allowAdmin,

	{ActionCreate, KindCategory}: allowAdmin,
	{ActionUpdate, KindCategory}: allowAdmin,
	{ActionDelete, KindCategory}: allowAdmin,

	{ActionModerate, KindComment}: allowAdmin,
	{ActionModerate, KindArticle}: allowAdmin,
	{ActionModerate, KindUser}:    allowAdmin,
	{ActionModerate, KindStats}:   allowAdmin,
}

// Check evaluates the rule table for the given action and resource.
// Unknown (action, kind) pairs deny closed.
func Check(action Action, res Resource, id Identity) Decision {
	r, ok := rules[ruleKey{action, res.Kind}]
	if !ok {
		if !id.Authenticated() {
			return DenyUnauthenticated
		}
		return DenyForbidden
	}
	return r(id, res)
}
