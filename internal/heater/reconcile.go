package heater

// Reconciler moves the believed setpoint toward the target one press at a
// time.
type Reconciler struct {
	presser Presser
}

// NewReconciler creates a Reconciler that presses through p.
func NewReconciler(p Presser) *Reconciler {
	return &Reconciler{presser: p}
}

// ReconcileOnce issues at most one pulse toward s.Target and updates
// s.Current after it. Returns the button pressed, or false when the
// setpoints already match.
func (r *Reconciler) ReconcileOnce(s *State) (Button, bool) {
	if s.Current == s.Target {
		return "", false
	}

	if s.Current > s.Target {
		r.presser.Press(Pulse{Button: ButtonDown, Count: 1})
		s.Current--
		return ButtonDown, true
	}

	r.presser.Press(Pulse{Button: ButtonUp, Count: 1})
	s.Current++
	return ButtonUp, true
}
