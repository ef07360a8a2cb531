package command

// Handler is the unit of behavior bound to one or more command names.
// P is the issuer type, passed through unchanged from the dispatch call.
type Handler[P any] interface {
	Invoke(issuer P, args *Args)
}

// HandlerFunc adapts a function consuming the argument scanner to Handler.
type HandlerFunc[P any] func(issuer P, args *Args)

// Invoke calls f(issuer, args).
func (f HandlerFunc[P]) Invoke(issuer P, args *Args) { f(issuer, args) }

// NoArgsFunc adapts a function that takes no arguments to Handler. Any
// arguments typed after the command name are ignored.
type NoArgsFunc[P any] func(issuer P)

// Invoke calls f(issuer).
func (f NoArgsFunc[P]) Invoke(issuer P, _ *Args) { f(issuer) }
