package rules

import (
	"fmt"
)

// DefaultMaxResolutionDepth bounds how deeply actions may nest through before windows.
const DefaultMaxResolutionDepth = 10

// ResolutionContext tracks which actions are currently resolving. An action
// interrupted by a before window stays on the stack while the responses resolve.
type ResolutionContext struct {
	resolvingStack []string // Innermost at end
	maxDepth       int
}

// NewResolutionContext creates a new resolution context.
func NewResolutionContext(maxDepth int) *ResolutionContext {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxResolutionDepth
	}
	return &ResolutionContext{
		resolvingStack: make([]string, 0, 8),
		maxDepth:       maxDepth,
	}
}

// BeginResolution marks the start of resolving an action.
func (rc *ResolutionContext) BeginResolution(actionID string) error {
	if len(rc.resolvingStack) >= rc.maxDepth {
		return fmt.Errorf("maximum resolution depth (%d) exceeded", rc.maxDepth)
	}
	rc.resolvingStack = append(rc.resolvingStack, actionID)
	return nil
}

// EndResolution marks the end of resolving an action.
func (rc *ResolutionContext) EndResolution(actionID string) error {
	if len(rc.resolvingStack) == 0 {
		return fmt.Errorf("no action currently resolving")
	}
	current := rc.resolvingStack[len(rc.resolvingStack)-1]
	if current != actionID {
		return fmt.Errorf("resolution mismatch: expected %s, got %s", current, actionID)
	}
	rc.resolvingStack = rc.resolvingStack[:len(rc.resolvingStack)-1]
	return nil
}

// Depth returns the current resolution depth.
func (rc *ResolutionContext) Depth() int {
	return len(rc.resolvingStack)
}

// Reset clears all resolution state.
func (rc *ResolutionContext) Reset() {
	rc.resolvingStack = rc.resolvingStack[:0]
}
