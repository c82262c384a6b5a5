package models

import "time"

// Comment is a note attached to a task. Comments cannot outlive their
// parent task; deleting the task deletes them.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
}
