package jobdescriptions

import "time"

// JobDescription is a saved posting a user can compare resumes against.
type JobDescription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle is "{title} at {company}".
func (j JobDescription) DisplayTitle() string {
	return j.Title + " at " + j.Company
}
