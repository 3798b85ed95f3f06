package executor

import (
	"slices"

	"go.trai.ch/weave/internal/core/domain"
)

// Request is the state of one resolution: a value stack per token and the
// request-scope cache.
type Request struct {
	stacks map[*domain.Token][]any
	cache  map[uint64]any
}

// NewRequest creates an empty request.
func NewRequest() *Request {
	return &Request{
		stacks: make(map[*domain.Token][]any),
		cache:  make(map[uint64]any),
	}
}

func (r *Request) push(token *domain.Token, v any) {
	r.stacks[token] = append(r.stacks[token], v)
}

// pop takes the most recently pushed value of token.
func (r *Request) pop(token *domain.Token) (any, bool) {
	stack := r.stacks[token]
	if len(stack) == 0 {
		return nil, false
	}
	v := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(r.stacks, token)
	} else {
		r.stacks[token] = stack[:len(stack)-1]
	}
	return v, true
}

// leftovers returns the names of tokens that still hold values, sorted.
func (r *Request) leftovers() []string {
	var names []string
	for token, stack := range r.stacks {
		if len(stack) > 0 {
			names = append(names, token.String())
		}
	}
	slices.Sort(names)
	return names
}
