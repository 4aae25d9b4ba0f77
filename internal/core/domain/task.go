package domain

import "fmt"

// TaskRef identifies a task by the project that declares it plus its name
// within that project. Display form is "<project-subpath>::<task-name>".
type TaskRef struct {
	Project ProjectRef
	Name    string
}

// String returns the task's display form.
func (r TaskRef) String() string {
	return fmt.Sprintf("%s::%s", r.Project.String(), r.Name)
}

// Equal compares two TaskRefs by project root and task name.
func (r TaskRef) Equal(other TaskRef) bool {
	return r.Project.Equal(other.Project) && r.Name == other.Name
}

// Less orders two TaskRefs by their display form, for deterministic
// iteration over sets of task refs.
func (r TaskRef) Less(other TaskRef) bool {
	return r.String() < other.String()
}

// TaskInputs groups the three kinds of declared task inputs. PathGlobs is
// authoritative today; EnvVars and CommandInputs are reserved (see spec
// Open Questions) and rejected rather than silently ignored when present.
type TaskInputs struct {
	PathGlobs     []string
	EnvVars       []string
	CommandInputs []string
}

// HasReservedInputs reports whether any reserved input kind is declared.
func (in TaskInputs) HasReservedInputs() bool {
	return len(in.EnvVars) > 0 || len(in.CommandInputs) > 0
}

// TaskInfo is the immutable, post-load description of a task: the project
// it belongs to, its shell-free command strings, and its declared inputs.
// Commands are opaque strings split on ASCII space at spawn time, never
// interpreted by a shell.
type TaskInfo struct {
	Project  ProjectRef
	Name     string
	Commands []string
	Inputs   TaskInputs
}

// Ref returns the TaskRef identifying this task.
func (t TaskInfo) Ref() TaskRef {
	return TaskRef{Project: t.Project, Name: t.Name}
}
