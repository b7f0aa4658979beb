package ports

import "context"

// EndpointResolver discovers the orchestration API address when none is given.
type EndpointResolver interface {
	Resolve(ctx context.Context, namespace string) (host string, err error)
}
