package model

// Todo is a single to-do item owned by exactly one user.
//
// The API name `text` maps to the storage column `content`.
type Todo struct {
	ID      int64  `json:"id"     db:"id"`
	Text    string `json:"text"   db:"content"`
	Done    bool   `json:"done"   db:"done"`
	OwnerID int64  `json:"userId" db:"user_id"`
}

// TodoPatch carries a partial update.
//
// Text is a pointer: nil means "leave unchanged". Done is a plain bool and is
// always written, so a patch that omits it resets the item to not done.
type TodoPatch struct {
	Text *string
	Done bool
}
