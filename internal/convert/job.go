package convert

import "strings"

// Status of a conversion job or of one of its tasks. Jobs and tasks share
// the same lifecycle: waiting -> processing -> finished | error.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusError
}

// UploadForm describes where an import task expects its file to be POSTed.
type UploadForm struct {
	Url        string            `json:"url"`
	Parameters map[string]string `json:"parameters"`
}

// ResultFile is one artifact produced by a finished task.
type ResultFile struct {
	Filename string `json:"filename"`
	Url      string `json:"url"`
}

type TaskResult struct {
	Form  *UploadForm  `json:"form,omitempty"`
	Files []ResultFile `json:"files,omitempty"`
}

// Task is one named unit of work inside a job.
type Task struct {
	Id        string      `json:"id"`
	Name      string      `json:"name"`
	Operation string      `json:"operation"`
	Status    Status      `json:"status"`
	Message   string      `json:"message,omitempty"` // populated when Status is error
	Result    *TaskResult `json:"result,omitempty"`
}

// Job is a set of cooperating tasks submitted and polled as a unit.
type Job struct {
	Id     string `json:"id"`
	Status Status `json:"status"`
	Tasks  []Task `json:"tasks"`
}

// Task returns the task with the given name, or nil.
func (j *Job) Task(name string) *Task {
	for i := range j.Tasks {
		if j.Tasks[i].Name == name {
			return &j.Tasks[i]
		}
	}
	return nil
}

// FirstError returns the error message of the first errored task, if any.
func (j *Job) FirstError() string {
	for _, t := range j.Tasks {
		if t.Status == StatusError {
			if t.Message != "" {
				return t.Name + ": " + t.Message
			}
			return t.Name + " failed"
		}
	}
	return ""
}

// FileUrlByExt scans every finished task's result files and returns the URL
// of the first file whose name ends with ext (e.g. ".pdf"). Empty when none
// match; callers may then fall back to a named-task lookup.
func (j *Job) FileUrlByExt(ext string) string {
	for _, t := range j.Tasks {
		if t.Result == nil {
			continue
		}
		for _, f := range t.Result.Files {
			if strings.HasSuffix(strings.ToLower(f.Filename), ext) && f.Url != "" {
				return f.Url
			}
		}
	}
	return ""
}

// FileUrlByTask returns the URL of the first result file of the named task.
// Second-chance resolution path when extension matching yields nothing.
func (j *Job) FileUrlByTask(name string) string {
	t := j.Task(name)
	if t == nil || t.Result == nil || len(t.Result.Files) == 0 {
		return ""
	}
	return t.Result.Files[0].Url
}
