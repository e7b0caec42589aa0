package shortener

import (
	"context"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the character set short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength is the short code length used when none is configured.
// 62^6 candidate codes keep collisions rare.
const DefaultCodeLength = 6

// CodeGenerator produces a random candidate code. Implementations must draw
// each character uniformly from Alphabet using a cryptographically strong
// source: codes double as unguessable link identifiers.
type CodeGenerator func() string

// NewCodeGenerator creates a generator for codes of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	generate, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return generate, nil
}

// CodeAllocator resolves candidate codes against the store until it finds an
// unused one. This only narrows the window between the existence check and the
// following save; the store's uniqueness constraint is the actual backstop
// against two concurrent allocations winning the same code.
type CodeAllocator struct {
	generate CodeGenerator
	repo     Repository
}

// NewCodeAllocator creates an allocator backed by the given generator and store.
func NewCodeAllocator(generate CodeGenerator, repo Repository) *CodeAllocator {
	return &CodeAllocator{
		generate: generate,
		repo:     repo,
	}
}

// Allocate returns the first generated candidate not yet present in the store.
func (a *CodeAllocator) Allocate(ctx context.Context) (string, error) {
	for {
		code := a.generate()

		exists, err := a.repo.ExistsByShortCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check short code: %w", err)
		}

		if !exists {
			return code, nil
		}
	}
}
