package crud

// Action is one of the logical operations a Dispatcher serves.
type Action int

const (
	ActionList Action = iota
	ActionGet
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionClone

	actionCount
)

var actionNames = [actionCount]string{
	ActionList:   "list",
	ActionGet:    "get",
	ActionCreate: "create",
	ActionUpdate: "update",
	ActionDelete: "delete",
	ActionClone:  "clone",
}

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete, ActionClone}
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction resolves an action by its lowercase name.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}
