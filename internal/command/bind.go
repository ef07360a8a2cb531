package command

// Slot is one binding target of an Apply call. Slots are built with Required,
// Optional, or OptionalOr.
type Slot interface {
	required() bool
	// stage converts the token at idx into the slot's pending value and reports
	// whether binding may continue.
	stage(a *Args, idx int) bool
	commit()
}

type requiredSlot[T Value] struct {
	ref     *T
	pending T
}

// Required binds the next token to *ref. Apply fails if the token is missing or
// does not convert to T.
//
// Precondition: ref must be non-nil.
func Required[T Value](ref *T) Slot {
	return &requiredSlot[T]{ref: ref}
}

func (s *requiredSlot[T]) required() bool { return true }

func (s *requiredSlot[T]) stage(a *Args, idx int) bool {
	v, ok := Get[T](a, idx)
	if !ok {
		return false
	}
	s.pending = v
	return true
}

func (s *requiredSlot[T]) commit() { *s.ref = s.pending }

type optionalSlot[T Value] struct {
	ref      *T
	fallback T
	pending  T
}

// Optional binds the next token to *ref if present and convertible, otherwise
// the zero value of T.
//
// Precondition: ref must be non-nil.
func Optional[T Value](ref *T) Slot {
	return &optionalSlot[T]{ref: ref}
}

// OptionalOr binds the next token to *ref if present and convertible, otherwise
// fallback.
//
// Precondition: ref must be non-nil.
func OptionalOr[T Value](ref *T, fallback T) Slot {
	return &optionalSlot[T]{ref: ref, fallback: fallback}
}

func (s *optionalSlot[T]) required() bool { return false }

func (s *optionalSlot[T]) stage(a *Args, idx int) bool {
	if v, ok := Get[T](a, idx); ok {
		s.pending = v
	} else {
		s.pending = s.fallback
	}
	return true
}

func (s *optionalSlot[T]) commit() { *s.ref = s.pending }

// Apply scans one token per slot and binds them in order, starting at the first
// token scanned by this call: slot N reads token Len()+N as it was before the call.
//
// Precondition: every slot was built by Required, Optional, or OptionalOr.
// Postcondition: Returns false, writing nothing, when fewer tokens were scanned
// than there are required slots or when a required token fails to convert.
// Otherwise every slot's target is written and Apply returns true.
func (a *Args) Apply(slots ...Slot) bool {
	required := 0
	for _, s := range slots {
		if s.required() {
			required++
		}
	}

	parsed := a.TryParse(len(slots))
	if parsed < required {
		return false
	}

	base := a.parsed - parsed
	for i, s := range slots {
		if !s.stage(a, base+i) {
			return false
		}
	}
	for _, s := range slots {
		s.commit()
	}
	return true
}
