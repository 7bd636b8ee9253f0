package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/moothz/ravena-go/internal/domain"
)

// ErrUnknownCommand is returned when a lookup is attempted for an
// unregistered token.
var ErrUnknownCommand = errors.New("unknown command")

// Registry stores command descriptors keyed by their canonical names. Names
// and aliases share one namespace: an alias may not collide with another
// command's name or alias.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*domain.Command
	aliases  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*domain.Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command to the registry. Names are stored lowercase for
// case-insensitive lookups. Collisions are registration errors, not silent
// overwrites.
func (r *Registry) Register(cmd *domain.Command) error {
	if !cmd.IsValid() {
		return fmt.Errorf("command must have a name and a handler")
	}

	name := strings.ToLower(cmd.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkCollision(name); err != nil {
		return err
	}
	loweredAliases := make([]string, 0, len(cmd.Aliases))
	for _, alias := range cmd.Aliases {
		lowered := strings.ToLower(alias)
		if lowered == name {
			continue
		}
		if err := r.checkCollision(lowered); err != nil {
			return err
		}
		loweredAliases = append(loweredAliases, lowered)
	}

	r.commands[name] = cmd
	for _, alias := range loweredAliases {
		r.aliases[alias] = name
	}
	return nil
}

func (r *Registry) checkCollision(token string) error {
	if _, exists := r.commands[token]; exists {
		return fmt.Errorf("command token %q already registered", token)
	}
	if canonical, exists := r.aliases[token]; exists {
		return fmt.Errorf("command token %q already registered as alias of %q", token, canonical)
	}
	return nil
}

// Resolve returns the command for a token, following aliases. Nil means the
// token is unknown.
func (r *Registry) Resolve(token string) *domain.Command {
	if token == "" {
		return nil
	}
	key := strings.ToLower(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.commands[key]; ok {
		return cmd
	}
	if canonical, ok := r.aliases[key]; ok {
		return r.commands[canonical]
	}
	return nil
}

// All returns the registered commands sorted by name.
func (r *Registry) All() []*domain.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
