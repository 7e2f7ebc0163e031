package domain

// Action is a reaction to a pending discard.
type Action string

const (
	ActionHu   Action = "hu"
	ActionGang Action = "gang"
	ActionPeng Action = "peng"
	ActionChi  Action = "chi"
)

// Priority orders competing claims: hu > gang > peng > chi.
func (a Action) Priority() int {
	switch a {
	case ActionHu:
		return 4
	case ActionGang:
		return 3
	case ActionPeng:
		return 2
	case ActionChi:
		return 1
	default:
		return 0
	}
}

func (a Action) Valid() bool { return a.Priority() > 0 }

// MeldKind maps a claim action to the meld it forms; hu forms none.
func (a Action) MeldKind() (MeldKind, bool) {
	switch a {
	case ActionGang:
		return MeldGang, true
	case ActionPeng:
		return MeldPeng, true
	case ActionChi:
		return MeldChi, true
	default:
		return "", false
	}
}
