package event

const TodoDeadlineDestination string = "taskflow.todo.deadline"
const TodoDeadlineConsumerNotification string = "todo_deadline_notification"

type TodoDeadlineMessage struct {
	TodoID   int64  `json:"todo_id"`
	UserID   int64  `json:"user_id"`
	Title    string `json:"title"`
	Deadline int64  `json:"deadline"` // Unix milliseconds
}
