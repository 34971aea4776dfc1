package uid

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type Strategy string

const (
	StrategySnowflake Strategy = "snowflake"
	StrategyUUIDv7    Strategy = "uuidv7"
)

type Options struct {
	Strategy Strategy

	// NodeID identifies this process among workers (snowflake only, 0-1023).
	NodeID int64

	// Prefix is prepended to every generated id, e.g. "task_".
	Prefix string
}

// UIDGenerator produces unique identifiers. Implementations must be safe for
// concurrent use.
type UIDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// GeneratorFunc adapts a plain function to UIDGenerator.
type GeneratorFunc func(ctx context.Context) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context) (string, error) {
	return f(ctx)
}

func New(opts Options) (UIDGenerator, error) {
	var (
		generator UIDGenerator
		err       error
	)

	switch opts.Strategy {
	case StrategySnowflake:
		generator, err = NewSnowflake(opts.NodeID)
	case StrategyUUIDv7, "":
		generator, err = NewUUIDv7()
	default:
		return nil, fmt.Errorf("uid: unknown strategy %q", opts.Strategy)
	}
	if err != nil {
		return nil, err
	}

	if opts.Prefix == "" {
		return generator, nil
	}
	return GeneratorFunc(func(ctx context.Context) (string, error) {
		id, err := generator.Generate(ctx)
		if err != nil {
			return "", err
		}
		return opts.Prefix + id, nil
	}), nil
}

type snowflakeGenerator struct {
	mu   sync.Mutex
	node *snowflake.Node
}

// NewSnowflake returns time-ordered 64-bit ids, used for queue task ids.
func NewSnowflake(nodeID int64) (UIDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("uid: failed to create snowflake node %d: %w", nodeID, err)
	}
	return &snowflakeGenerator{node: node}, nil
}

func (g *snowflakeGenerator) Generate(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.node.Generate().String(), nil
}

type uuidv7Generator struct{}

// NewUUIDv7 returns RFC 9562 v7 ids, used for idempotency cache entries.
func NewUUIDv7() (UIDGenerator, error) {
	return uuidv7Generator{}, nil
}

func (uuidv7Generator) Generate(_ context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uid: failed to generate uuid v7: %w", err)
	}
	return id.String(), nil
}
