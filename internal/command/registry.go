package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrUnsupportedHandler is returned by Add when the callback has a signature
// that no built-in adapter accepts.
var ErrUnsupportedHandler = errors.New("unsupported handler type")

type entry[P any] struct {
	name    string // as registered, for display
	handler Handler[P]
}

// Registry maps case-insensitive command names to handlers and dispatches raw
// command lines to them.
//
// Registry is safe for concurrent dispatch. Registration is expected to finish
// before dispatch starts.
type Registry[P any] struct {
	mu       sync.RWMutex
	commands map[string]entry[P] // lowercased name → entry
	prefix   string
	logger   *zap.Logger
}

type registryOptions struct {
	prefix string
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*registryOptions)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *registryOptions) { o.logger = logger }
}

// WithPrefix requires every command line to start with prefix (e.g. "/"), which
// is stripped before the command name is extracted. An empty prefix disables the check.
func WithPrefix(prefix string) Option {
	return func(o *registryOptions) { o.prefix = prefix }
}

// NewRegistry creates an empty Registry.
//
// Postcondition: Returns a Registry with no commands; the logger defaults to a no-op logger.
func NewRegistry[P any](opts ...Option) *Registry[P] {
	o := registryOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[P]{
		commands: make(map[string]entry[P]),
		prefix:   o.prefix,
		logger:   o.logger,
	}
}

// FoldName lowercases ASCII letters only. Two names select the same command
// exactly when their FoldName values are equal.
func FoldName(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 'A' && c <= 'Z' {
			b := []byte(name)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return name
}

// Handle binds h to every name in names. All names share the same handler value.
//
// Postcondition: Each name resolves to h; a previous binding of the same name
// (ignoring case) is replaced.
func (r *Registry[P]) Handle(h Handler[P], names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		key := FoldName(name)
		if prev, exists := r.commands[key]; exists {
			r.logger.Debug("replacing command binding",
				zap.String("name", name),
				zap.String("previous", prev.name),
			)
		}
		r.commands[key] = entry[P]{name: name, handler: h}
	}
}

// HandleFunc binds fn, which receives the argument scanner, to names.
func (r *Registry[P]) HandleFunc(fn func(issuer P, args *Args), names ...string) {
	r.Handle(HandlerFunc[P](fn), names...)
}

// HandleNoArgs binds fn, which ignores arguments, to names.
func (r *Registry[P]) HandleNoArgs(fn func(issuer P), names ...string) {
	r.Handle(NoArgsFunc[P](fn), names...)
}

// Add binds cb to names, choosing the adapter from cb's type. cb may be a
// Handler[P], a func(P, *Args), or a func(P).
//
// Postcondition: Returns an error wrapping ErrUnsupportedHandler if cb is none of
// those; otherwise behaves like Handle.
func (r *Registry[P]) Add(cb any, names ...string) error {
	var h Handler[P]
	switch fn := cb.(type) {
	case Handler[P]:
		h = fn
	case func(P, *Args):
		h = HandlerFunc[P](fn)
	case func(P):
		h = NoArgsFunc[P](fn)
	default:
		return fmt.Errorf("registering %v: %w: %T", names, ErrUnsupportedHandler, cb)
	}
	r.Handle(h, names...)
	return nil
}

// Lookup returns the handler bound to name, ignoring ASCII case.
func (r *Registry[P]) Lookup(name string) (Handler[P], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.commands[FoldName(name)]
	return e.handler, ok
}

// Names returns every registered name, aliases included, ordered case-insensitively.
func (r *Registry[P]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = r.commands[k].name
	}
	return names
}

// Prefix returns the prefix every command line must carry, or "" if none.
func (r *Registry[P]) Prefix() string {
	return r.prefix
}

// ValidName reports whether name can be dispatched: it must be non-empty and
// free of the whitespace that separates a command name from its arguments.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if IsSpace(name[i]) {
			return false
		}
	}
	return true
}

// Len returns the number of registered names.
func (r *Registry[P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// SplitCommand separates line into its first whitespace-delimited token and the
// remainder. The remainder keeps its leading whitespace.
//
// Postcondition: ok is false iff line contains no token.
func SplitCommand(line string) (name, tail string, ok bool) {
	start := 0
	for start < len(line) && IsSpace(line[start]) {
		start++
	}
	if start >= len(line) {
		return "", "", false
	}
	end := start
	for end < len(line) && !IsSpace(line[end]) {
		end++
	}
	return line[start:end], line[end:], true
}

// HandleCommandText dispatches line on behalf of issuer.
//
// Postcondition: Returns true iff a handler was found and invoked. The handler
// receives a fresh Args over everything after the command name. An unknown
// command, a blank line, or a missing prefix returns false without invoking anything.
func (r *Registry[P]) HandleCommandText(issuer P, line string) bool {
	if r.prefix != "" {
		// The name must follow the prefix directly.
		rest, found := strings.CutPrefix(line, r.prefix)
		if !found || rest == "" || IsSpace(rest[0]) {
			return false
		}
		line = rest
	}

	name, tail, ok := SplitCommand(line)
	if !ok {
		return false
	}

	h, ok := r.Lookup(name)
	if !ok {
		r.logger.Debug("unknown command", zap.String("name", name))
		return false
	}

	args := NewArgs(tail)
	h.Invoke(issuer, args)

	if args.Truncated() {
		r.logger.Warn("command arguments truncated",
			zap.String("name", name),
			zap.Int("max_args", MaxArgs),
		)
	}
	return true
}
