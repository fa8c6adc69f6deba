// Package core contains the canonical go-outplay contracts and domain
// entities: credentials, webhook subscription state, and the host
// collaborator interfaces (transport, node state storage, callback URL
// resolution, trigger delivery). Endpoint clients and adapters depend on
// this package; core must not depend on them.
package core
