// internal/app/system/tenant/scope.go
package tenant

import (
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnscopedCollection is returned by ScopeFilter for a collection that has
// not been registered as tenant-scoped. The filter fails closed: an
// unregistered collection cannot be queried through the tenant path at all,
// so adding a new scoped entity without registering it is caught immediately
// instead of silently leaking rows across tenants.
var ErrUnscopedCollection = errors.New("collection is not registered as tenant-scoped")

var (
	scopeMu sync.RWMutex
	scopes  = map[string]string{} // collection → organization-id field
)

// Register declares that collection carries tenant-owned rows, keyed by the
// given organization-id field. Each store that owns a tenant-scoped
// collection registers it from init(), so the registry is complete before
// any request is served. Registering the same collection twice with a
// different field panics: that is a programmer error.
func Register(collection, orgField string) {
	scopeMu.Lock()
	defer scopeMu.Unlock()
	if existing, ok := scopes[collection]; ok && existing != orgField {
		panic(fmt.Sprintf("tenant: collection %q registered with conflicting org fields %q and %q",
			collection, existing, orgField))
	}
	scopes[collection] = orgField
}

// Registered reports whether collection is known to the scope registry.
func Registered(collection string) bool {
	scopeMu.RLock()
	defer scopeMu.RUnlock()
	_, ok := scopes[collection]
	return ok
}

// matchNothing is a filter no document satisfies (_id is always present).
func matchNothing() bson.M {
	return bson.M{"_id": bson.M{"$exists": false}}
}

// ScopeFilter returns the bson filter restricting collection to rows owned
// by orgID.
//
// Invariants:
//   - orgID == NilObjectID (no organization resolved) always yields a filter
//     matching nothing, for every collection — a user without a tenant must
//     never see any tenant's data.
//   - an unregistered collection yields ErrUnscopedCollection (fail closed).
//
// The result is a pure function of the inputs; callers may merge extra
// conditions into the returned map.
func ScopeFilter(collection string, orgID primitive.ObjectID) (bson.M, error) {
	if orgID == primitive.NilObjectID {
		return matchNothing(), nil
	}

	scopeMu.RLock()
	field, ok := scopes[collection]
	scopeMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnscopedCollection, collection)
	}
	return bson.M{field: orgID}, nil
}

// ScopedFilter merges the tenant restriction for collection with extra
// conditions. Extra conditions never widen the filter: the organization
// field cannot be overridden by the caller.
func ScopedFilter(collection string, orgID primitive.ObjectID, extra bson.M) (bson.M, error) {
	base, err := ScopeFilter(collection, orgID)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := base[k]; taken {
			continue
		}
		base[k] = v
	}
	return base, nil
}
