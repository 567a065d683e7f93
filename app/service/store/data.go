package store

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is a single conversation entry. Turns are never mutated after creation,
// only appended to a user's history or cleared along with it.
type Turn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Parts: []string{text}}
}

func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []string{text}}
}
