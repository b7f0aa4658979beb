package ports

import "context"

// Checker submits (or executes) a prepared sample and asserts on the outcome.
type Checker interface {
	Run(ctx context.Context) error
	Check(ctx context.Context) error
}
