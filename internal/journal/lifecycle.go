package journal

// Operation names a requested change to an entry.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpPost   Operation = "post"
	OpVoid   Operation = "void"
	OpDelete Operation = "delete"
)

// Transition returns the status an entry moves to when op is applied in
// status. A deleted entry has no status, so OpDelete yields "".
//
//	(new)  create -> draft
//	draft  update -> draft, delete -> removed, post -> posted
//	posted void   -> voided
//	voided        -> terminal
func Transition(status Status, op Operation) (Status, error) {
	switch status {
	case "":
		if op == OpCreate {
			return StatusDraft, nil
		}
		return "", ErrInvalidTransition
	case StatusDraft:
		switch op {
		case OpUpdate:
			return StatusDraft, nil
		case OpPost:
			return StatusPosted, nil
		case OpDelete:
			return "", nil
		}
		return "", ErrInvalidTransition
	case StatusPosted:
		switch op {
		case OpVoid:
			return StatusVoided, nil
		case OpUpdate, OpDelete, OpPost:
			return "", ErrEntryNotEditable
		}
		return "", ErrInvalidTransition
	case StatusVoided:
		return "", ErrEntryTerminal
	}
	return "", ErrInvalidTransition
}

// Authorize reports whether op is legal for status.
func Authorize(status Status, op Operation) error {
	_, err := Transition(status, op)
	return err
}

// Editable reports whether header and lines may still change.
func (s Status) Editable() bool {
	return s == StatusDraft
}

// Terminal reports whether no further transitions exist.
func (s Status) Terminal() bool {
	return s == StatusVoided
}
